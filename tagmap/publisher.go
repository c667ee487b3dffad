package tagmap

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// TagPose is the wire form of one routed tag's absolute pose, published
// after each rebuild.
type TagPose struct {
	ID        TagID   `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Twist     float64 `json:"twist"` // radians
	HopCount  int     `json:"hopCount"`
	Timestamp int64   `json:"timestamp"`
}

// Publisher announces tag poses to MQTT after rebuilds: one retained
// message per tag plus a combined message with every routed tag.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	poses         map[TagID]*TagPose
	mu            sync.RWMutex
}

// NewPublisher creates a pose publisher. If client is nil, publishing is
// disabled (for testing).
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if env := os.Getenv("MQTT_PUBLISH_PREFIX"); env != "" {
		prefix = env
	}
	if prefix == "" {
		prefix = "fiducials"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,
		retain:        true, // retain so late subscribers get the latest map
		poses:         make(map[TagID]*TagPose),
	}
}

// PublishMap publishes the pose of every routed tag in the map. Unrouted
// tags carry stale poses and are skipped. Returns the number of tags
// published.
func (p *Publisher) PublishMap(m *Map) (int, error) {
	if p.client == nil || !p.client.IsConnected() {
		return 0, fmt.Errorf("MQTT client not connected")
	}

	now := time.Now().Unix()
	published := 0
	for _, tag := range m.Tags() {
		if !tag.Routed {
			continue
		}
		pose := &TagPose{
			ID:        tag.ID,
			X:         tag.X,
			Y:         tag.Y,
			Twist:     tag.Twist,
			HopCount:  tag.HopCount,
			Timestamp: now,
		}

		p.mu.Lock()
		p.poses[tag.ID] = pose
		p.mu.Unlock()

		if err := p.publishTag(pose); err != nil {
			log.Printf("Error publishing pose for tag %d: %v", tag.ID, err)
			return published, err
		}
		published++
	}

	if err := p.publishCombined(); err != nil {
		log.Printf("Error publishing combined tag poses: %v", err)
		return published, err
	}
	return published, nil
}

// publishTag publishes one pose to <prefix>/tags/<id>.
func (p *Publisher) publishTag(pose *TagPose) error {
	topic := fmt.Sprintf("%s/tags/%d", p.publishPrefix, pose.ID)
	payload, err := json.Marshal(pose)
	if err != nil {
		return fmt.Errorf("marshaling tag pose: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// publishCombined publishes every known pose to <prefix>/tags.
func (p *Publisher) publishCombined() error {
	p.mu.RLock()
	combined := make([]*TagPose, 0, len(p.poses))
	for _, pose := range p.poses {
		combined = append(combined, pose)
	}
	p.mu.RUnlock()

	payload, err := json.Marshal(combined)
	if err != nil {
		return fmt.Errorf("marshaling combined tag poses: %w", err)
	}

	topic := fmt.Sprintf("%s/tags", p.publishPrefix)
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

package tagmap

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// FrameHandler is called for each camera frame received on the observation
// topic. When decoding fails, frame is nil and err describes the problem;
// the raw payload is provided either way.
type FrameHandler func(rawPayload []byte, frame *Frame, err error)

// FixHandler is called for each robot location fix received on the fix
// topic.
type FixHandler func(fix *LocationFix)

// MQTTClient manages the MQTT connection carrying camera observation
// frames and robot location fixes.
type MQTTClient struct {
	client       mqtt.Client
	config       *Config
	frameHandler FrameHandler
	fixHandler   FixHandler
	isConnected  bool
	mu           sync.RWMutex
}

// InitMQTT builds and connects an MQTT client for the configured broker.
// Environment variables MQTT_BROKER, MQTT_CLIENT_ID, MQTT_USERNAME, and
// MQTT_PASSWORD override the corresponding config fields. If no broker is
// configured anywhere, MQTT is disabled and InitMQTT returns nil, nil.
func InitMQTT(config *Config, frameHandler FrameHandler, fixHandler FixHandler) (*MQTTClient, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" && config != nil && config.MQTT.Broker != "" {
		broker = config.MQTT.Broker
	}
	if broker == "" {
		log.Println("MQTT disabled: MQTT_BROKER not set")
		return nil, nil
	}

	if config == nil || config.Camera.ObservationTopic == "" {
		return nil, fmt.Errorf("MQTT enabled but no camera observation topic configured")
	}

	client := &MQTTClient{
		config:       config,
		frameHandler: frameHandler,
		fixHandler:   fixHandler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "fiducials"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" && config.MQTT.Username != "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" && config.MQTT.Password != "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false)
	// Frame ordering does not matter: refinement keeps only the best
	// measurement per pair regardless of arrival order.
	opts.SetOrderMatters(false)

	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)
	opts.SetReconnectingHandler(client.onReconnecting)

	client.client = mqtt.NewClient(opts)

	go client.connectWithRetry()

	return client, nil
}

// connectWithRetry attempts to connect to the MQTT broker with exponential
// backoff.
func (c *MQTTClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("Connecting to MQTT broker...")

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("Successfully connected to MQTT broker")
				c.setConnected(true)
				return
			}
			log.Printf("MQTT connection failed: %v", token.Error())
		} else {
			log.Println("MQTT connection timeout")
		}

		log.Printf("Retrying MQTT connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// onConnect subscribes to the observation and fix topics.
func (c *MQTTClient) onConnect(client mqtt.Client) {
	c.setConnected(true)

	topic := c.config.Camera.ObservationTopic
	log.Printf("Subscribing to %s for camera frames", topic)
	token := client.Subscribe(topic, 0, c.handleFrameMessage)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("Error subscribing to %s: %v", topic, token.Error())
	}

	if fixTopic := c.config.Robot.FixTopic; fixTopic != "" {
		log.Printf("Subscribing to %s for robot fixes", fixTopic)
		fixToken := client.Subscribe(fixTopic, 0, c.handleFixMessage)
		if fixToken.WaitTimeout(5*time.Second) && fixToken.Error() != nil {
			log.Printf("Error subscribing to %s: %v", fixTopic, fixToken.Error())
		}
	}
}

func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

func (c *MQTTClient) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("MQTT reconnecting...")
}

func (c *MQTTClient) handleFrameMessage(client mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()

	frame, err := DecodeFrame(payload)
	if err != nil {
		log.Printf("Error decoding camera frame: %v", err)
		if c.frameHandler != nil {
			c.frameHandler(payload, nil, err)
		}
		return
	}

	if c.frameHandler != nil {
		c.frameHandler(payload, frame, nil)
	}
}

func (c *MQTTClient) handleFixMessage(client mqtt.Client, msg mqtt.Message) {
	fix, err := DecodeFix(msg.Payload())
	if err != nil {
		log.Printf("Error decoding location fix: %v", err)
		return
	}
	if c.fixHandler != nil {
		c.fixHandler(fix)
	}
}

// setConnected updates the connection state in a thread-safe manner.
func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// IsConnected reports whether the client currently holds a broker
// connection.
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// Client exposes the underlying paho client, primarily for the Publisher.
func (c *MQTTClient) Client() mqtt.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Disconnect closes the MQTT connection gracefully.
func (c *MQTTClient) Disconnect() {
	if c != nil && c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

package tagmap

// TagID identifies one ceiling fiducial marker. IDs are assigned by the
// fiducial printing scheme and are totally ordered; the lowest ID present
// in a map is fixed as the map origin.
type TagID uint32

// Tag represents one ceiling fiducial marker.
//
// The bottom edge of the printed fiducial establishes the tag's own
// reference direction ("tag X axis"). Twist is the rotation from the floor
// X axis to that edge, in radians, normalized to (-pi, pi].
//
// X, Y, Twist, HopCount, and Routed are written by Map.Rebuild and are
// meaningful only between a completed rebuild and the next graph mutation.
type Tag struct {
	ID TagID `json:"id"`

	// Absolute pose in the map frame.
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Twist float64 `json:"twist"` // radians

	// Diagonal is the fiducial diagonal in camera pixels, as last observed.
	Diagonal float64 `json:"diagonal"`

	// DistancePerPixel converts camera pixels to floor units for this tag,
	// selected from the height table by ID range.
	DistancePerPixel float64 `json:"distancePerPixel"`

	// HopCount is the number of spanning-tree edges between this tag and
	// the origin tag.
	HopCount int `json:"hopCount"`

	// Routed reports whether the last rebuild reached this tag from the
	// origin. Pose and HopCount of an unrouted tag are stale.
	Routed bool `json:"routed"`

	// Initialized is true once the tag has carried a real pose, either
	// from a rebuild or from a loaded map file.
	Initialized bool `json:"-"`

	// Arcs is the append-only set of arcs incident to this tag.
	Arcs []*Arc `json:"-"`
}

// Observation is one camera frame's pixel-space estimate of a single tag:
// the pixel coordinates of the tag center and the tag twist measured in
// the camera frame.
type Observation struct {
	TagID    TagID   `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Twist    float64 `json:"twist"` // radians, camera frame
	Diagonal float64 `json:"diagonal,omitempty"`
}

// Frame is one camera frame's worth of tag observations.
type Frame struct {
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Observations []Observation `json:"tags"`
}

// LocationFix is one robot localization fix, drawn on the map render as a
// bearing triangle.
type LocationFix struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Bearing float64 `json:"bearing"` // radians
}

// HeightRange maps a contiguous span of tag IDs, all mounted at the same
// ceiling height, to the floor distance covered by one camera pixel.
type HeightRange struct {
	FirstID          TagID   `yaml:"firstId" json:"firstId"`
	LastID           TagID   `yaml:"lastId" json:"lastId"`
	DistancePerPixel float64 `yaml:"distancePerPixel" json:"distancePerPixel"`
}

// MQTTConfig holds MQTT connection settings.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// CameraConfig describes the observation feed.
type CameraConfig struct {
	ObservationTopic string `yaml:"observationTopic" json:"observationTopic"`
	FrameWidth       int    `yaml:"frameWidth" json:"frameWidth"`
	FrameHeight      int    `yaml:"frameHeight" json:"frameHeight"`
}

// RobotConfig describes the robot localization feed.
type RobotConfig struct {
	FixTopic string `yaml:"fixTopic,omitempty" json:"fixTopic,omitempty"`
}

// Config represents the full configuration file.
type Config struct {
	MQTT       MQTTConfig    `yaml:"mqtt" json:"mqtt"`
	Camera     CameraConfig  `yaml:"camera" json:"camera"`
	Robot      RobotConfig   `yaml:"robot,omitempty" json:"robot,omitempty"`
	MapFile    string        `yaml:"mapFile,omitempty" json:"mapFile,omitempty"`
	TagHeights []HeightRange `yaml:"tagHeights" json:"tagHeights"`
}

package domain

import "time"

// =============================================================================
// Transport
// =============================================================================

// Transport is the wire mechanism a communication channel is bound to.
type Transport string

const (
	TransportKVBroker       Transport = "kv-broker"
	TransportDirectSocket   Transport = "direct-socket"
	TransportRuntimeNetwork Transport = "runtime-network"
	TransportSharedVolume   Transport = "shared-volume"
)

// SocketProtocol is the L4 protocol a direct-socket channel uses.
type SocketProtocol string

const (
	SocketTCP SocketProtocol = "tcp"
	SocketUDP SocketProtocol = "udp"
)

// KVBrokerConfig is the recognized config for a kv-broker channel.
type KVBrokerConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Database int    `yaml:"database" json:"database"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}

// DirectSocketConfig is the recognized config for a direct-socket channel.
type DirectSocketConfig struct {
	Protocol SocketProtocol `yaml:"protocol" json:"protocol"`
	Host     string         `yaml:"host" json:"host"`
	Port     int            `yaml:"port" json:"port"`
}

// RuntimeNetworkConfig is the recognized config for a runtime-network channel.
type RuntimeNetworkConfig struct {
	Network string `yaml:"network" json:"network"`
}

// SharedVolumeConfig is the recognized config for a shared-volume channel.
type SharedVolumeConfig struct {
	Volume    string `yaml:"volume" json:"volume"`
	MountPath string `yaml:"mount_path" json:"mount_path"`
}

// =============================================================================
// Communication Channel
// =============================================================================

// CommunicationChannel binds a logical name to one transport with its config.
type CommunicationChannel struct {
	Name              string    `yaml:"name" json:"name"`
	Type              Transport `yaml:"type" json:"type"`
	ParticipantNames  []string  `yaml:"container_names" json:"container_names"`
	CreatedAt         time.Time `yaml:"created_at" json:"created_at"`

	KVBroker       *KVBrokerConfig       `yaml:"kv_broker,omitempty" json:"kv_broker,omitempty"`
	DirectSocket   *DirectSocketConfig   `yaml:"direct_socket,omitempty" json:"direct_socket,omitempty"`
	RuntimeNetwork *RuntimeNetworkConfig `yaml:"runtime_network,omitempty" json:"runtime_network,omitempty"`
	SharedVolume   *SharedVolumeConfig   `yaml:"shared_volume,omitempty" json:"shared_volume,omitempty"`

	// Active and SubscriberCount are runtime state, not persisted config;
	// they are recomputed by the fabric's background loop.
	Active          bool `yaml:"-" json:"active"`
	SubscriberCount int  `yaml:"-" json:"subscriber_count"`
}

// =============================================================================
// Message
// =============================================================================

// MessageType classifies the payload carried by a Message.
type MessageType string

const (
	MessageCommand   MessageType = "command"
	MessageEvent     MessageType = "event"
	MessageData      MessageType = "data"
	MessageHeartbeat MessageType = "heartbeat"
)

// Message is one unit published on a channel. Ephemeral: never persisted
// beyond a transport's own delivery mechanism.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Source    string      `json:"source"`
	Targets   []string    `json:"targets,omitempty"` // empty = broadcast
	Timestamp time.Time   `json:"timestamp"`
}

// Package fabric contains the pure message construction and serialization
// logic behind the Communication Fabric (C4). No transport I/O lives
// here — see internal/shell/fabric for that.
package fabric

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"sync/atomic"
	"time"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// taskCounter stands in for the "thread id" component of the message-id
// hash (spec.md §3: "derived from time+process+thread hash"); Go has no
// stable thread id, so a monotonically increasing counter plays the same
// disambiguating role across messages published within the same process
// in the same nanosecond.
var taskCounter uint64

// NewMessageID derives a message id from wall-clock time, the current
// process id, and a per-process task counter, hashed with FNV-1a. Two
// calls in direct succession always produce distinct ids (spec.md §8:
// "publish followed by publish ... produces two distinct message ids").
func NewMessageID() string {
	task := atomic.AddUint64(&taskCounter, 1)
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d|%d", time.Now().UnixNano(), os.Getpid(), task)
	return fmt.Sprintf("%x", h.Sum64())
}

// NewMessage builds a Message ready to publish. msgType defaults to
// MessageData when empty; targets empty means broadcast.
func NewMessage(content string, msgType domain.MessageType, source string, targets []string) domain.Message {
	if msgType == "" {
		msgType = domain.MessageData
	}
	return domain.Message{
		ID:        NewMessageID(),
		Type:      msgType,
		Content:   content,
		Source:    source,
		Targets:   targets,
		Timestamp: time.Now(),
	}
}

// NewHeartbeat builds the synthetic heartbeat message the fabric's
// background loop publishes to every active channel each cycle: empty
// source, no targets (spec.md §4.4).
func NewHeartbeat() domain.Message {
	return NewMessage("", domain.MessageHeartbeat, "", nil)
}

// Serialize encodes a Message as the structured text record spec.md §3
// calls for: one JSON object carrying every field.
func Serialize(msg domain.Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Deserialize decodes a Message previously produced by Serialize.
func Deserialize(data []byte) (domain.Message, error) {
	var msg domain.Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}

package fabric

import (
	"errors"
	"fmt"

	"github.com/artpar/smoothstack/internal/core/domain"
)

// ErrUnknownConfigKey is returned by ValidateChannel when a channel record
// carries a config block for a transport other than its declared Type, or
// omits the one it needs (spec.md §8: "the set of recognized config keys
// is exactly the set for C.type ... unknown keys cause a Validation error
// at configure time").
var ErrUnknownConfigKey = errors.New("channel config does not match declared transport")

// ValidateChannel checks that exactly the config block matching the
// channel's declared transport is populated, and that its required
// fields are non-empty.
func ValidateChannel(ch domain.CommunicationChannel) error {
	present := map[domain.Transport]bool{
		domain.TransportKVBroker:       ch.KVBroker != nil,
		domain.TransportDirectSocket:   ch.DirectSocket != nil,
		domain.TransportRuntimeNetwork: ch.RuntimeNetwork != nil,
		domain.TransportSharedVolume:   ch.SharedVolume != nil,
	}

	for transport, isSet := range present {
		if transport != ch.Type && isSet {
			return fmt.Errorf("%w: channel %q is type %s but carries %s config", ErrUnknownConfigKey, ch.Name, ch.Type, transport)
		}
	}

	switch ch.Type {
	case domain.TransportKVBroker:
		if ch.KVBroker == nil || ch.KVBroker.Host == "" || ch.KVBroker.Port == 0 {
			return fmt.Errorf("%w: kv-broker channel %q requires host and port", ErrUnknownConfigKey, ch.Name)
		}
	case domain.TransportDirectSocket:
		if ch.DirectSocket == nil || ch.DirectSocket.Host == "" || ch.DirectSocket.Port == 0 {
			return fmt.Errorf("%w: direct-socket channel %q requires host and port", ErrUnknownConfigKey, ch.Name)
		}
		if ch.DirectSocket.Protocol != domain.SocketTCP && ch.DirectSocket.Protocol != domain.SocketUDP {
			return fmt.Errorf("%w: direct-socket channel %q has invalid protocol %q", ErrUnknownConfigKey, ch.Name, ch.DirectSocket.Protocol)
		}
	case domain.TransportRuntimeNetwork:
		if ch.RuntimeNetwork == nil || ch.RuntimeNetwork.Network == "" {
			return fmt.Errorf("%w: runtime-network channel %q requires a network name", ErrUnknownConfigKey, ch.Name)
		}
	case domain.TransportSharedVolume:
		if ch.SharedVolume == nil || ch.SharedVolume.Volume == "" || ch.SharedVolume.MountPath == "" {
			return fmt.Errorf("%w: shared-volume channel %q requires a volume name and mount path", ErrUnknownConfigKey, ch.Name)
		}
	default:
		return fmt.Errorf("%w: unrecognized transport %q", ErrUnknownConfigKey, ch.Type)
	}

	if len(ch.ParticipantNames) == 0 {
		return fmt.Errorf("%w: channel %q has no participants", ErrUnknownConfigKey, ch.Name)
	}

	return nil
}

// PreservesOrder reports whether messages published in sequence on this
// transport are observed in that same order (spec.md §5's ordering
// guarantees): true for kv-broker and TCP direct-socket, false for UDP
// direct-socket, runtime-network, and shared-volume.
func PreservesOrder(ch domain.CommunicationChannel) bool {
	switch ch.Type {
	case domain.TransportKVBroker:
		return true
	case domain.TransportDirectSocket:
		return ch.DirectSocket != nil && ch.DirectSocket.Protocol == domain.SocketTCP
	default:
		return false
	}
}

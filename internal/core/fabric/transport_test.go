package fabric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/smoothstack/internal/core/domain"
)

func TestValidateChannel_MismatchedConfig(t *testing.T) {
	ch := domain.CommunicationChannel{
		Name:             "k1",
		Type:             domain.TransportKVBroker,
		ParticipantNames: []string{"c1"},
		KVBroker:         &domain.KVBrokerConfig{Host: "localhost", Port: 6379},
		DirectSocket:     &domain.DirectSocketConfig{Host: "x", Port: 1, Protocol: domain.SocketTCP},
	}
	err := ValidateChannel(ch)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigKey)
}

func TestValidateChannel_KVBrokerOK(t *testing.T) {
	ch := domain.CommunicationChannel{
		Name:             "k1",
		Type:             domain.TransportKVBroker,
		ParticipantNames: []string{"c1", "c2"},
		KVBroker:         &domain.KVBrokerConfig{Host: "localhost", Port: 6379},
	}
	assert.NoError(t, ValidateChannel(ch))
}

func TestValidateChannel_NoParticipants(t *testing.T) {
	ch := domain.CommunicationChannel{
		Name:     "k1",
		Type:     domain.TransportKVBroker,
		KVBroker: &domain.KVBrokerConfig{Host: "localhost", Port: 6379},
	}
	require.Error(t, ValidateChannel(ch))
}

func TestPreservesOrder(t *testing.T) {
	kv := domain.CommunicationChannel{Type: domain.TransportKVBroker}
	assert.True(t, PreservesOrder(kv))

	tcp := domain.CommunicationChannel{Type: domain.TransportDirectSocket, DirectSocket: &domain.DirectSocketConfig{Protocol: domain.SocketTCP}}
	assert.True(t, PreservesOrder(tcp))

	udp := domain.CommunicationChannel{Type: domain.TransportDirectSocket, DirectSocket: &domain.DirectSocketConfig{Protocol: domain.SocketUDP}}
	assert.False(t, PreservesOrder(udp))

	vol := domain.CommunicationChannel{Type: domain.TransportSharedVolume}
	assert.False(t, PreservesOrder(vol))
}

package fabric

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/shell/engine"
)

type fakeEngineClient struct {
	engine.Client
	execResult engine.ExecResult
	execErr    error
	volumeOK   bool
}

func (f *fakeEngineClient) Exec(ctx context.Context, containerID string, argv []string) (engine.ExecResult, error) {
	return f.execResult, f.execErr
}

func (f *fakeEngineClient) VolumeGet(name string) (engine.VolumeDetail, bool, error) {
	return engine.VolumeDetail{Name: name}, f.volumeOK, nil
}

func (f *fakeEngineClient) NetworkInspect(name string) (engine.NetworkDetail, error) {
	return engine.NetworkDetail{Name: name}, nil
}

func runtimeNetChannel() domain.CommunicationChannel {
	return domain.CommunicationChannel{
		Name:             "c1",
		Type:             domain.TransportRuntimeNetwork,
		ParticipantNames: []string{"container-a", "container-b"},
		RuntimeNetwork:   &domain.RuntimeNetworkConfig{Network: "net1"},
	}
}

func TestRegistry_RegisterPublishUnregister(t *testing.T) {
	fc := &fakeEngineClient{execResult: engine.ExecResult{ExitCode: 0}}
	r := NewRegistry(fc)

	require.NoError(t, r.Register(runtimeNetChannel()))

	msg, err := r.Publish(context.Background(), "c1", "hello", domain.MessageData, "container-a", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)

	require.NoError(t, r.Unregister("c1"))
	_, err = r.Get("c1")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	fc := &fakeEngineClient{}
	r := NewRegistry(fc)
	require.NoError(t, r.Register(runtimeNetChannel()))
	assert.ErrorIs(t, r.Register(runtimeNetChannel()), ErrChannelExists)
}

func TestRegistry_PublishUnknownChannel(t *testing.T) {
	r := NewRegistry(&fakeEngineClient{})
	_, err := r.Publish(context.Background(), "missing", "x", domain.MessageData, "s", nil)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestHeartbeat_MarksChannelActive(t *testing.T) {
	fc := &fakeEngineClient{execResult: engine.ExecResult{ExitCode: 0}}
	r := NewRegistry(fc)
	require.NoError(t, r.Register(runtimeNetChannel()))

	hb := NewHeartbeat(r, HeartbeatConfig{Interval: 20 * time.Millisecond, ProbeTimeout: time.Second}, nil)
	hb.Start()
	time.Sleep(50 * time.Millisecond)
	hb.Stop()

	ch, err := r.Get("c1")
	require.NoError(t, err)
	assert.True(t, ch.Active)
}

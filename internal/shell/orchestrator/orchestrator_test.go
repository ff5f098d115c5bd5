package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/shell/engine"
)

// fakeClient implements engine.Client in memory, recording the order in
// which containers were started so dependency ordering can be asserted.
// ListContainers ignores opts.Filters and returns every container it
// knows about; callers that need an exact match must filter client-side.
type fakeClient struct {
	engine.Client

	startOrder     []string
	stopOrder      []string
	createdNetwork []string
	networkErr     map[string]error
	imageExists    bool
	containers     map[string]engine.ContainerInfo
	networks       map[string]engine.NetworkDetail
	nextID         int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		imageExists: true,
		containers:  make(map[string]engine.ContainerInfo),
		networks:    make(map[string]engine.NetworkDetail),
	}
}

func (f *fakeClient) CreateNetwork(spec engine.NetworkSpec) (string, error) {
	if err, ok := f.networkErr[spec.Name]; ok && err != nil {
		return "", err
	}
	f.createdNetwork = append(f.createdNetwork, spec.Name)
	id := "net-" + spec.Name
	f.networks[spec.Name] = engine.NetworkDetail{ID: id, Name: spec.Name, Containers: map[string]engine.NetworkEndpoint{}}
	return id, nil
}

func (f *fakeClient) RemoveNetwork(id string) error {
	for name, d := range f.networks {
		if d.ID == id || name == id {
			delete(f.networks, name)
		}
	}
	return nil
}

func (f *fakeClient) NetworkInspect(name string) (engine.NetworkDetail, error) {
	if d, ok := f.networks[name]; ok {
		return d, nil
	}
	return engine.NetworkDetail{}, engine.ErrNetworkNotFound
}

func (f *fakeClient) ImageExists(image string) (bool, error) { return f.imageExists, nil }

func (f *fakeClient) PullImage(image string, opts engine.PullOptions) error { return nil }

func (f *fakeClient) CreateContainer(spec engine.ContainerSpec) (string, error) {
	f.nextID++
	id := spec.Name
	f.containers[id] = engine.ContainerInfo{
		ID: id, Name: spec.Name, Status: engine.ContainerStatusCreated, Labels: spec.Labels,
	}
	return id, nil
}

func (f *fakeClient) StartContainer(id string) error {
	f.startOrder = append(f.startOrder, id)
	info := f.containers[id]
	info.Status = engine.ContainerStatusRunning
	info.Health = "healthy"
	f.containers[id] = info
	return nil
}

func (f *fakeClient) StopContainer(id string, timeout *time.Duration) error {
	f.stopOrder = append(f.stopOrder, id)
	info := f.containers[id]
	info.Status = engine.ContainerStatusExited
	f.containers[id] = info
	return nil
}

func (f *fakeClient) RemoveContainer(id string, opts engine.RemoveOptions) error {
	delete(f.containers, id)
	return nil
}

func (f *fakeClient) InspectContainer(id string) (*engine.ContainerInfo, error) {
	info, ok := f.containers[id]
	if !ok {
		return nil, engine.ErrContainerNotFound
	}
	return &info, nil
}

func (f *fakeClient) ListContainers(opts engine.ListOptions) ([]engine.ContainerInfo, error) {
	var out []engine.ContainerInfo
	for _, c := range f.containers {
		out = append(out, c)
	}
	return out, nil
}

func groupWithDependency() *domain.ServiceGroup {
	g := domain.NewServiceGroup("stack1", "")
	g.Networks["net1"] = domain.ServiceNetwork{Name: "net1", Driver: "bridge"}
	g.Services["db"] = domain.Service{Name: "db", Image: "postgres:15", Networks: []string{"net1"}}
	g.Services["api"] = domain.Service{
		Name: "api", Image: "myapp:1.0", Networks: []string{"net1"},
		DependsOn: []domain.ServiceDependency{{Target: "db", Condition: domain.ConditionHealthy, Required: true}},
	}
	return g
}

func TestDeploy_CreatesWithoutStarting(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)

	result := o.Deploy(context.Background(), groupWithDependency())

	require.True(t, result.Success)
	assert.Empty(t, fc.startOrder)
	assert.Equal(t, []string{"stack1_net1"}, fc.createdNetwork)
	assert.Len(t, fc.containers, 2)
	for _, c := range fc.containers {
		assert.Equal(t, engine.ContainerStatusCreated, c.Status)
	}
}

func TestDeploy_IsIdempotent(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()

	first := o.Deploy(context.Background(), group)
	second := o.Deploy(context.Background(), group)

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Len(t, fc.createdNetwork, 1)
	assert.Len(t, fc.containers, 2)
}

func TestDeploy_ContinuesPastNetworkFailure(t *testing.T) {
	fc := newFakeClient()
	fc.networkErr = map[string]error{"stack1_net1": assert.AnError}
	o := New(fc, nil)

	result := o.Deploy(context.Background(), groupWithDependency())

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Messages)
}

func TestDeploy_InvalidGroupShortCircuits(t *testing.T) {
	g := domain.NewServiceGroup("broken", "")
	g.Services["a"] = domain.Service{Name: "a", Image: "x", Networks: []string{"missing"}}

	fc := newFakeClient()
	o := New(fc, nil)

	result := o.Deploy(context.Background(), g)

	assert.False(t, result.Success)
	assert.Empty(t, fc.startOrder)
}

func TestStart_StartsInDependencyOrder(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()
	o.Deploy(context.Background(), group)

	messages := o.Start(context.Background(), group)

	assert.Empty(t, messages)
	require.Len(t, fc.startOrder, 2)
	assert.Equal(t, "stack1-db", fc.startOrder[0])
	assert.Equal(t, "stack1-api", fc.startOrder[1])
}

func TestStart_IsIdempotent(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()
	o.Deploy(context.Background(), group)
	o.Start(context.Background(), group)

	messages := o.Start(context.Background(), group)

	assert.Empty(t, messages)
	assert.Len(t, fc.startOrder, 2)
}

func TestStop_StopsOnlyRunningContainers(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()
	o.Deploy(context.Background(), group)
	o.Start(context.Background(), group)

	messages := o.Stop(context.Background(), group)
	assert.Empty(t, messages)
	for _, c := range fc.containers {
		assert.Equal(t, engine.ContainerStatusExited, c.Status)
	}
}

func TestStop_StopsInReverseDependencyOrder(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()
	o.Deploy(context.Background(), group)
	o.Start(context.Background(), group)

	o.Stop(context.Background(), group)

	require.Len(t, fc.stopOrder, 2)
	assert.Equal(t, "stack1-api", fc.stopOrder[0])
	assert.Equal(t, "stack1-db", fc.stopOrder[1])
}

func TestRemove_RemovesContainersAndNetworks(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()
	o.Deploy(context.Background(), group)
	o.Start(context.Background(), group)

	messages := o.Remove(context.Background(), group)
	assert.Empty(t, messages)
	assert.Empty(t, fc.containers)
	assert.Empty(t, fc.networks)
}

func TestRemove_LeavesNetworkWithForeignContainer(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()
	o.Deploy(context.Background(), group)
	o.Start(context.Background(), group)

	detail := fc.networks["stack1_net1"]
	detail.Containers["other-group-sidecar"] = engine.NetworkEndpoint{ContainerName: "other-group-sidecar", IPv4Address: "10.0.0.9"}
	fc.networks["stack1_net1"] = detail

	messages := o.Remove(context.Background(), group)
	assert.NotEmpty(t, messages)
	assert.Contains(t, fc.networks, "stack1_net1")
}

func TestAggregateStatus(t *testing.T) {
	fc := newFakeClient()
	o := New(fc, nil)
	group := groupWithDependency()

	unknown, err := o.Status(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupUnknown, unknown.Status)

	o.Deploy(context.Background(), group)
	created, err := o.Status(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupStopped, created.Status)

	o.Start(context.Background(), group)
	running, err := o.Status(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupRunning, running.Status)

	info := fc.containers["stack1-api"]
	info.Status = engine.ContainerStatusExited
	fc.containers["stack1-api"] = info
	partial, err := o.Status(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupPartiallyRunning, partial.Status)
}

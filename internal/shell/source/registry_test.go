package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artpar/smoothstack/internal/core/domain"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(t.TempDir())
	require.NoError(t, err)
	return reg
}

func TestRegister_RejectsDuplicateName(t *testing.T) {
	reg := newTestRegistry(t)
	src := domain.DependencySource{Name: "pypi-main", URL: "https://pypi.org/simple", Ecosystem: domain.EcosystemPyPI, Group: "global", Enabled: true}

	require.NoError(t, reg.Register(src))
	require.ErrorIs(t, reg.Register(src), ErrExists)
}

func TestRegister_DefaultsStatusToUnknown(t *testing.T) {
	reg := newTestRegistry(t)
	src := domain.DependencySource{Name: "npm-main", URL: "https://registry.npmjs.org", Ecosystem: domain.EcosystemNPM, Group: "global", Enabled: true}
	require.NoError(t, reg.Register(src))

	got, err := reg.Get("npm-main")
	require.NoError(t, err)
	require.Equal(t, domain.SourceUnknown, got.Status)
}

func TestGet_UnknownNameReturnsErrNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Get("does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_UnknownNameReturnsErrNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	require.ErrorIs(t, reg.Delete("does-not-exist"), ErrNotFound)
}

func TestUpdate_PersistsHealthFields(t *testing.T) {
	reg := newTestRegistry(t)
	src := domain.DependencySource{Name: "mirror-a", URL: "https://mirror.example/simple", Ecosystem: domain.EcosystemPyPI, Group: "global", Enabled: true}
	require.NoError(t, reg.Register(src))

	src.Status = domain.SourceOnline
	src.SuccessCount = 3
	require.NoError(t, reg.Update(src))

	got, err := reg.Get("mirror-a")
	require.NoError(t, err)
	require.Equal(t, domain.SourceOnline, got.Status)
	require.Equal(t, 3, got.SuccessCount)
}

func TestList_ReturnsSortedByName(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(domain.DependencySource{Name: "zzz", Ecosystem: domain.EcosystemPyPI, Group: "global", Enabled: true}))
	require.NoError(t, reg.Register(domain.DependencySource{Name: "aaa", Ecosystem: domain.EcosystemPyPI, Group: "global", Enabled: true}))

	all, err := reg.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "aaa", all[0].Name)
	require.Equal(t, "zzz", all[1].Name)
}

func TestSelect_PrefersOnlineOverHigherPriorityOffline(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(domain.DependencySource{
		Name: "primary", Ecosystem: domain.EcosystemPyPI, Group: "global", Priority: 0, Enabled: true, Status: domain.SourceOffline,
	}))
	require.NoError(t, reg.Register(domain.DependencySource{
		Name: "backup", Ecosystem: domain.EcosystemPyPI, Group: "global", Priority: 10, Enabled: true, Status: domain.SourceOnline,
	}))

	result, err := reg.Select(domain.EcosystemPyPI, "global")
	require.NoError(t, err)
	require.NotNil(t, result.Selected)
	require.Equal(t, "backup", result.Selected.Name)
	require.False(t, result.Fallback)
}

func TestSelect_FallsBackWhenNoneOnline(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.Register(domain.DependencySource{
		Name: "only", Ecosystem: domain.EcosystemNPM, Group: "china", Priority: 1, Enabled: true, Status: domain.SourceUnknown,
	}))

	result, err := reg.Select(domain.EcosystemNPM, "china")
	require.NoError(t, err)
	require.NotNil(t, result.Selected)
	require.Equal(t, "only", result.Selected.Name)
	require.True(t, result.Fallback)
}

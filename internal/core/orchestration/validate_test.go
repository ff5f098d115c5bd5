package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/smoothstack/internal/core/domain"
)

func TestValidate_UnknownDependency(t *testing.T) {
	g := domain.NewServiceGroup("demo", "")
	g.Services["web"] = svc("web", "api")

	problems := Validate(g)
	assert.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "unknown service")
}

func TestValidate_UnknownNetwork(t *testing.T) {
	g := domain.NewServiceGroup("demo", "")
	s := svc("web")
	s.Networks = []string{"missing"}
	g.Services["web"] = s

	problems := Validate(g)
	assert.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "unknown network")
}

func TestValidate_CycleMessageContainsBothNames(t *testing.T) {
	g := domain.NewServiceGroup("loop", "")
	g.Services["a"] = svc("a", "b")
	g.Services["b"] = svc("b", "a")

	problems := Validate(g)
	assert.NotEmpty(t, problems)
	found := false
	for _, p := range problems {
		if contains(p, "a") && contains(p, "b") && contains(p, "circular") {
			found = true
		}
	}
	assert.True(t, found, "expected a circular dependency message naming both services, got %v", problems)
}

func TestValidate_ValidGroup(t *testing.T) {
	g := domain.NewServiceGroup("demo", "")
	g.Networks["net1"] = domain.ServiceNetwork{Name: "net1", Driver: "bridge"}
	s := svc("web", "db")
	s.Networks = []string{"net1"}
	g.Services["web"] = s
	g.Services["db"] = svc("db")

	assert.Empty(t, Validate(g))
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}

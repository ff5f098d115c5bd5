package templatestore

import (
	"github.com/artpar/smoothstack/internal/core/domain"
)

var builtinNetworkNames = map[string]bool{
	"isolated":        true,
	"web_app":         true,
	"high_performance": true,
	"database":        true,
	"micro_services":  true,
}

var builtinDevEnvNames = map[string]bool{
	"python":    true,
	"nodejs":    true,
	"fullstack": true,
	"postgres":  true,
}

func isBuiltinNetworkName(name string) bool { return builtinNetworkNames[name] }
func isBuiltinDevEnvName(name string) bool  { return builtinDevEnvNames[name] }

// BuiltinNetworkTemplates returns the default network templates seeded
// into a fresh store (spec.md §6).
func BuiltinNetworkTemplates() []domain.NetworkTemplate {
	return []domain.NetworkTemplate{
		{
			Name:        "isolated",
			Description: "No external connectivity; services reach only each other",
			Driver:      "bridge",
			Internal:    true,
		},
		{
			Name:        "web_app",
			Description: "Default bridge network for a web application stack",
			Driver:      "bridge",
		},
		{
			Name:        "high_performance",
			Description: "Larger subnet, jumbo-friendly options for throughput-sensitive workloads",
			Driver:      "bridge",
			Subnet:      "172.30.0.0/16",
			Gateway:     "172.30.0.1",
			Options:     map[string]string{"com.docker.network.driver.mtu": "9000"},
		},
		{
			Name:        "database",
			Description: "Internal network for database services, no inbound ports by default",
			Driver:      "bridge",
			Internal:    true,
		},
		{
			Name:        "micro_services",
			Description: "Shared network for a microservices mesh with IPv6 enabled",
			Driver:      "bridge",
			EnableIPv6:  true,
		},
	}
}

// BuiltinDevEnvironmentTemplates returns the default dev-environment
// templates seeded into a fresh store (spec.md §6).
func BuiltinDevEnvironmentTemplates() []domain.DevEnvironmentTemplate {
	return []domain.DevEnvironmentTemplate{
		{
			Name:             "python",
			EnvType:          domain.EnvTypePython,
			Image:            "python:3.9-slim",
			Description:      "Python development environment",
			WorkingDir:       "/app",
			Command:          []string{"sleep", "infinity"},
			Volumes:          []domain.DevVolumeMount{{HostPath: "${workspaceFolder}", ContainerPath: "${workspaceFolder}"}},
			Environment:      map[string]string{"PYTHONUNBUFFERED": "1"},
			Ports:            []domain.PortMapping{{ContainerPort: 8000, Protocol: "tcp"}},
			VSCodeExtensions: []string{"ms-python.python"},
		},
		{
			Name:             "nodejs",
			EnvType:          domain.EnvTypeNodeJS,
			Image:            "node:20-slim",
			Description:      "Node.js development environment",
			Command:          []string{"sleep", "infinity"},
			Volumes:          []domain.DevVolumeMount{{HostPath: "${workspaceFolder}", ContainerPath: "${workspaceFolder}"}},
			VSCodeExtensions: []string{"dbaeumer.vscode-eslint"},
		},
		{
			Name:        "fullstack",
			EnvType:     domain.EnvTypeFullstack,
			Image:       "node:20-slim",
			Description: "Combined Node.js frontend and Python backend development environment",
			Command:     []string{"sleep", "infinity"},
			Volumes:     []domain.DevVolumeMount{{HostPath: "${workspaceFolder}", ContainerPath: "${workspaceFolder}"}},
			VSCodeExtensions: []string{
				"ms-python.python",
				"dbaeumer.vscode-eslint",
			},
		},
		{
			Name:        "postgres",
			EnvType:     domain.EnvTypeDatabase,
			Image:       "postgres:16",
			Description: "PostgreSQL database environment",
			Environment: map[string]string{"POSTGRES_PASSWORD": "postgres"},
			Ports:       []domain.PortMapping{{ContainerPort: 5432, Protocol: "tcp"}},
		},
	}
}

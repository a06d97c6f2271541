//go:build integration
// +build integration

// Package testutil starts throwaway brokers for the integration tests and
// returns connection strings in the form the bus package parses.
package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	kafkaImage      = "confluentinc/confluent-local:7.5.0"
	natsImage       = "nats:2.10-alpine"
	rabbitImage     = "rabbitmq:3.13-management-alpine"
	redisImage      = "redis:7-alpine"
	mysqlImage      = "mysql:8.0"
	sqlEdgeImage    = "mcr.microsoft.com/azure-sql-edge:latest"
	sbEmulatorImage = "mcr.microsoft.com/azure-messaging/servicebus-emulator:latest"

	startupTimeout = 2 * time.Minute
	sqlPassword    = "Str0ng!Passw0rd"
)

// ServiceBusTopic and ServiceBusSubscription are provisioned by the emulator config.
const (
	ServiceBusTopic        = "users"
	ServiceBusSubscription = "check"
)

func terminate(t *testing.T, c testcontainers.Container) {
	t.Helper()
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})
}

// ProjectRoot is the module root, resolved from this file's location.
func ProjectRoot() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "..", "..")
}

// StartKafka returns kafka://<brokers> and the raw broker list.
func StartKafka(t *testing.T) (string, []string) {
	ctx := context.Background()

	c, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("user-send-test"))
	require.NoError(t, err)
	terminate(t, c)

	brokers, err := c.Brokers(ctx)
	require.NoError(t, err)
	return "kafka://" + strings.Join(brokers, ","), brokers
}

// StartNATS returns a nats:// URL.
func StartNATS(t *testing.T) string {
	ctx := context.Background()

	c, err := tcnats.Run(ctx, natsImage)
	require.NoError(t, err)
	terminate(t, c)

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}

// StartRabbitMQ returns an amqp:// URL with the default guest credentials.
func StartRabbitMQ(t *testing.T) string {
	ctx := context.Background()

	c, err := rabbitmq.Run(ctx, rabbitImage)
	require.NoError(t, err)
	terminate(t, c)

	url, err := c.AmqpURL(ctx)
	require.NoError(t, err)
	return url
}

// StartRedis returns a redis:// URL.
func StartRedis(t *testing.T) string {
	ctx := context.Background()

	c, err := tcredis.Run(ctx, redisImage)
	require.NoError(t, err)
	terminate(t, c)

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}

// StartMySQL runs the outbox migration on start and returns mysql://<dsn>
// plus the bare go-sql-driver DSN.
func StartMySQL(t *testing.T) (string, string) {
	ctx := context.Background()

	c, err := tcmysql.Run(ctx, mysqlImage,
		tcmysql.WithDatabase("users"),
		tcmysql.WithUsername("user_send"),
		tcmysql.WithPassword("user_send"),
		tcmysql.WithScripts(filepath.Join(ProjectRoot(), "migrations", "001_outbox.sql")),
	)
	require.NoError(t, err)
	terminate(t, c)

	dsn, err := c.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)
	return "mysql://" + dsn, dsn
}

const serviceBusEmulatorConfig = `{
  "UserConfig": {
    "Namespaces": [{
      "Name": "sbemulatorns",
      "Queues": [],
      "Topics": [{
        "Name": "users",
        "Properties": {
          "DefaultMessageTimeToLive": "PT1H",
          "DuplicateDetectionHistoryTimeWindow": "PT20S",
          "RequiresDuplicateDetection": false
        },
        "Subscriptions": [{
          "Name": "check",
          "Properties": {
            "DeadLetteringOnMessageExpiration": false,
            "DefaultMessageTimeToLive": "PT1H",
            "LockDuration": "PT1M",
            "MaxDeliveryCount": 3,
            "ForwardDeadLetteredMessagesToTopic": "",
            "ForwardTo": "",
            "RequiresSession": false
          },
          "Rules": []
        }]
      }]
    }],
    "Logging": {"Type": "File"}
  }
}`

// StartServiceBus runs the Service Bus emulator (with its SQL Edge store)
// and returns an Endpoint= connection string for it. The emulator only
// honours the default AMQP port, so 5672 is bound on the host.
func StartServiceBus(t *testing.T) string {
	ctx := context.Background()

	nw, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(context.Background()) })

	sqlEdge, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          sqlEdgeImage,
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"sqledge"}},
			Env: map[string]string{
				"ACCEPT_EULA":       "Y",
				"MSSQL_SA_PASSWORD": sqlPassword,
			},
			WaitingFor: wait.ForLog("Recovery is complete").WithStartupTimeout(startupTimeout),
		},
		Started: true,
	})
	require.NoError(t, err)
	terminate(t, sqlEdge)

	emulator, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        sbEmulatorImage,
			ExposedPorts: []string{"5672/tcp"},
			HostConfigModifier: func(hc *container.HostConfig) {
				hc.PortBindings = map[nat.Port][]nat.PortBinding{
					"5672/tcp": {{HostIP: "127.0.0.1", HostPort: "5672"}},
				}
			},
			Networks: []string{nw.Name},
			Env: map[string]string{
				"ACCEPT_EULA":       "Y",
				"SQL_SERVER":        "sqledge",
				"MSSQL_SA_PASSWORD": sqlPassword,
			},
			Files: []testcontainers.ContainerFile{{
				Reader:            strings.NewReader(serviceBusEmulatorConfig),
				ContainerFilePath: "/ServiceBus_Emulator/ConfigFiles/Config.json",
				FileMode:          0o644,
			}},
			WaitingFor: wait.ForLog("Emulator Service is Successfully Up!").WithStartupTimeout(startupTimeout),
		},
		Started: true,
	})
	require.NoError(t, err)
	terminate(t, emulator)

	return "Endpoint=sb://localhost;SharedAccessKeyName=RootManageSharedAccessKey;SharedAccessKey=SAS_KEY_VALUE;UseDevelopmentEmulator=true;"
}

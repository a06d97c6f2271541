package bus

import (
	"testing"

	"github.com/jmehdipour/user-send/internal/model"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleEnvelope = model.NewUserDataEnvelope(
	"0b6f6b9e-5d43-4a8a-9d3c-54a1a1f0c0de",
	`[{"Id":4,"Name":"Carlos Flores","Edad":23,"Profesion":"ISC"}]`,
)

func requireEnvelopeBody(t *testing.T, body []byte) {
	t.Helper()
	decoded, err := model.DecodeEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, sampleEnvelope, decoded)
}

func TestServiceBusMessage(t *testing.T) {
	msg, err := serviceBusMessage(sampleEnvelope)
	require.NoError(t, err)

	require.NotNil(t, msg.MessageID)
	require.NotNil(t, msg.Subject)
	require.NotNil(t, msg.ContentType)
	assert.Equal(t, sampleEnvelope.ID, *msg.MessageID)
	assert.Equal(t, model.TypeUserData, *msg.Subject)
	assert.Equal(t, contentTypeJSON, *msg.ContentType)
	requireEnvelopeBody(t, msg.Body)
}

func TestKafkaMessage(t *testing.T) {
	msg, err := kafkaMessage(sampleEnvelope)
	require.NoError(t, err)

	assert.Equal(t, sampleEnvelope.ID, string(msg.Key))
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{"type": model.TypeUserData, "content-type": contentTypeJSON}, headers)
	requireEnvelopeBody(t, msg.Value)
}

func TestNATSMsg(t *testing.T) {
	msg, err := natsMsg("users", sampleEnvelope)
	require.NoError(t, err)

	assert.Equal(t, "users", msg.Subject)
	assert.Equal(t, sampleEnvelope.ID, msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, model.TypeUserData, msg.Header.Get("type"))
	assert.Equal(t, contentTypeJSON, msg.Header.Get("content-type"))
	requireEnvelopeBody(t, msg.Data)
}

func TestAMQPPublishing(t *testing.T) {
	pub, err := amqpPublishing(sampleEnvelope, "user-send")
	require.NoError(t, err)

	assert.Equal(t, sampleEnvelope.ID, pub.MessageId)
	assert.Equal(t, model.TypeUserData, pub.Type)
	assert.Equal(t, "user-send", pub.AppId)
	assert.Equal(t, contentTypeJSON, pub.ContentType)
	assert.EqualValues(t, amqp.Persistent, pub.DeliveryMode)
	assert.False(t, pub.Timestamp.IsZero())
	requireEnvelopeBody(t, pub.Body)
}

func TestStreamValues(t *testing.T) {
	values, err := streamValues(sampleEnvelope)
	require.NoError(t, err)

	require.Len(t, values, 3)
	assert.Equal(t, sampleEnvelope.ID, values["id"])
	assert.Equal(t, model.TypeUserData, values["type"])

	body, ok := values["body"].([]byte)
	require.True(t, ok, "body is stored as raw bytes")
	requireEnvelopeBody(t, body)
}

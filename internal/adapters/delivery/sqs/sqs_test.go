package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pilltrack/internal/adapters/delivery"
	"pilltrack/internal/domain/notifications"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*awssqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &awssqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestPublish_SendsBodyAndAttributes(t *testing.T) {
	fake := &fakeSQS{}
	p := newWithClient(fake, "http://localhost:4566/000000000000/notifications")

	n := notifications.Notification{ID: "n1", UserID: "u1", Type: notifications.TypeLowStock, Message: "low"}
	require.NoError(t, p.Publish(context.Background(), n))

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "http://localhost:4566/000000000000/notifications", aws.ToString(in.QueueUrl))
	assert.Equal(t, "LOW_STOCK", aws.ToString(in.MessageAttributes["type"].StringValue))
	assert.Equal(t, "u1", aws.ToString(in.MessageAttributes["user_id"].StringValue))

	var ev delivery.Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &ev))
	assert.Equal(t, "n1", ev.ID)
}

func TestPublish_ErrorWrapped(t *testing.T) {
	p := newWithClient(&fakeSQS{err: errors.New("throttled")}, "q")
	err := p.Publish(context.Background(), notifications.Notification{ID: "n1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqs: send message: throttled")
}

func TestNew_RequiresQueueURL(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func isolateAWSEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", dir+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", dir+"/credentials")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_ENDPOINT_URL", "")
	t.Setenv("AWS_ENDPOINT_URL_SQS", "")
}

func TestNew_KeepsSDKDefaultsAndOverridesEndpoint(t *testing.T) {
	isolateAWSEnv(t)

	p, err := New(context.Background(), Options{
		QueueURL: "http://localhost:4566/000000000000/notifications",
		Region:   "us-east-1",
		Endpoint: " http://localhost:4566 ",
	})
	require.NoError(t, err)

	client, ok := p.client.(*awssqs.Client)
	require.True(t, ok)
	o := client.Options()

	assert.Equal(t, "us-east-1", o.Region)
	require.NotNil(t, o.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *o.BaseEndpoint)
	// lo que arma NewFromConfig a partir de aws.Config
	assert.NotNil(t, o.Retryer)
	assert.NotNil(t, o.Credentials)
	assert.NotNil(t, o.Logger)
}

func TestNew_NoEndpointLeavesSDKResolution(t *testing.T) {
	isolateAWSEnv(t)

	p, err := New(context.Background(), Options{QueueURL: "https://sqs.eu-west-1.amazonaws.com/1/q", Region: "eu-west-1"})
	require.NoError(t, err)

	o := p.client.(*awssqs.Client).Options()
	assert.Equal(t, "eu-west-1", o.Region)
	assert.Nil(t, o.BaseEndpoint)
}

package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

var _ repository.IReportNotifier = (*ReportNotifier)(nil)

// NewPubSub creates a Pub/Sub client for projectID
func NewPubSub(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating PubSub client")
		return nil, err
	}
	return client, nil
}

// ReportNotifier publishes one JSON message per finished report run
type ReportNotifier struct {
	PubSubClient *pubsub.Client
	topicName    string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewReportNotifier(pubSubClient *pubsub.Client, topicName string) *ReportNotifier {
	return &ReportNotifier{
		PubSubClient: pubSubClient,
		topicName:    topicName,
	}
}

// NotifyReportCompleted returns the server-assigned message id
func (n *ReportNotifier) NotifyReportCompleted(ctx context.Context, result *dto.ReportResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return n.Publish(ctx, payload, map[string]string{
		"event":     "report-completed",
		"runId":     result.RunID,
		"channelId": result.ChannelID,
	})
}

func (n *ReportNotifier) Publish(ctx context.Context, payload []byte, attributes map[string]string) (string, error) {
	topic, err := n.ensureTopic(ctx)
	if err != nil {
		return "", err
	}

	msg := &pubsub.Message{
		Data:       payload,
		Attributes: attributes,
	}
	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", err
	}

	logger.GetLogger().WithField("server ID", serverID).WithField("topic", n.topicName).Info("Message published")
	return serverID, nil
}

// Stop flushes pending messages
func (n *ReportNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.topic != nil {
		n.topic.Stop()
	}
}

func (n *ReportNotifier) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.topic != nil {
		return n.topic, nil
	}

	topic := n.PubSubClient.Topic(n.topicName)

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", n.topicName).Info("Topic doesn't exist - creating it")
		topic, err = n.PubSubClient.CreateTopic(ctx, n.topicName)
		if err != nil {
			return nil, err
		}
	}
	n.topic = topic
	return topic, nil
}

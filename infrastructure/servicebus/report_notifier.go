package servicebus

import (
	"context"
	"encoding/json"
	"errors"

	"yt-channel-report/domain/dto"
	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

const subject = "report-completed"

var _ repository.IReportNotifier = (*ReportNotifier)(nil)

// NewServiceBus connects with a connection string when one is given, otherwise
// to namespace with the default Azure credential chain.
func NewServiceBus(namespace, connectionString string) (*azservicebus.Client, error) {
	if connectionString != "" {
		return azservicebus.NewClientFromConnectionString(connectionString, nil)
	}
	if namespace == "" {
		return nil, errors.New("service bus namespace or connection string is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating Azure credential.")
		return nil, err
	}
	return azservicebus.NewClient(namespace, credential, nil)
}

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// ReportNotifier sends one message per finished report run to a queue or topic
type ReportNotifier struct {
	queue     string
	newSender func(queue string) (messageSender, error)
}

func NewReportNotifier(client *azservicebus.Client, queue string) *ReportNotifier {
	return &ReportNotifier{
		queue: queue,
		newSender: func(queue string) (messageSender, error) {
			return client.NewSender(queue, nil)
		},
	}
}

// NotifyReportCompleted returns the message id, which is the run id
func (n *ReportNotifier) NotifyReportCompleted(ctx context.Context, result *dto.ReportResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}

	contentType := "application/json"
	messageID := result.RunID
	subject := subject
	message := &azservicebus.Message{
		Body:        payload,
		ContentType: &contentType,
		MessageID:   &messageID,
		Subject:     &subject,
		ApplicationProperties: map[string]any{
			"runId":     result.RunID,
			"channelId": result.ChannelID,
		},
	}
	if err := n.SendMessage(ctx, message); err != nil {
		return "", err
	}
	return messageID, nil
}

func (n *ReportNotifier) SendMessage(ctx context.Context, message *azservicebus.Message) error {
	sender, err := n.newSender(n.queue)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if err := sender.Close(context.WithoutCancel(ctx)); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}()

	if err := sender.SendMessage(ctx, message, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}

	logger.GetLogger().WithField("queue", n.queue).Info("Message sent")
	return nil
}

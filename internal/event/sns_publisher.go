package event

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	log "github.com/sirupsen/logrus"
)

// SNSAlertPublisher sends alert events to an SNS topic.
type SNSAlertPublisher struct {
	client   snsiface.SNSAPI
	topicARN string
}

func NewSNSAlertPublisher(region, topicARN string) (*SNSAlertPublisher, error) {
	if topicARN == "" {
		return nil, fmt.Errorf("sns topic arn is required")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return &SNSAlertPublisher{client: sns.New(sess), topicARN: topicARN}, nil
}

func (p *SNSAlertPublisher) PublishAlert(ctx context.Context, event AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	subject := truncateSubject(fmt.Sprintf("[%s] %s", event.Priority, event.Title))

	out, err := p.client.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]*sns.MessageAttributeValue{
			"priority": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Priority)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert to sns: %w", err)
	}

	log.WithFields(log.Fields{
		"message_id": aws.StringValue(out.MessageId),
		"title":      event.Title,
	}).Info("Alert event sent to SNS")
	return nil
}

const maxSubjectRunes = 100

// truncateSubject cuts to the SNS subject limit, which counts characters.
func truncateSubject(subject string) string {
	if utf8.RuneCountInString(subject) <= maxSubjectRunes {
		return subject
	}
	return string([]rune(subject)[:maxSubjectRunes])
}

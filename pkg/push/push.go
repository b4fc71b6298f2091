package push

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/pkg/content"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Registrations is the source of push recipients
type Registrations interface {
	ActiveRegistrations(ctx context.Context, p device.Provider) ([]device.Registration, error)
}

// Dispatcher delivers bulletin announcements to every active registration
// through the AWS SNS platform application of its provider
type Dispatcher struct {
	registrations Registrations
	client        snsiface.SNSAPI
	platforms     map[device.Provider]string
	logger        *zap.Logger
}

// NewSNSClient initializes an SNS client for a given region,
// credentials are resolved by the default AWS chain
func NewSNSClient(region string) (snsiface.SNSAPI, error) {
	if region == "" {
		return nil, ErrEmptyRegion
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize aws session")
	}

	return sns.New(sess), nil
}

// NewDispatcher initializes a new dispatcher, a provider without
// a platform application ARN is skipped
func NewDispatcher(rs Registrations, client snsiface.SNSAPI, apnsARN, gcmARN string) (*Dispatcher, error) {
	if rs == nil {
		return nil, ErrNilRegistrations
	}

	if client == nil {
		return nil, ErrNilClient
	}

	d := &Dispatcher{
		registrations: rs,
		client:        client,
		platforms:     make(map[device.Provider]string),
	}

	if apnsARN != "" {
		d.platforms[device.APNS] = apnsARN
	}

	if gcmARN != "" {
		d.platforms[device.GCM] = gcmARN
	}

	if len(d.platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	return d, nil
}

// SetLogger assigns a logger for this dispatcher
func (d *Dispatcher) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[push]")
	}

	d.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
// a new default emergency logger
func (d *Dispatcher) Logger() *zap.Logger {
	if d.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize push dispatcher logger: %s", err))
		}

		d.logger = l
	}

	return d.logger
}

// AnnounceBulletin pushes a bulletin to every active registration,
// delivery continues past individual failures and all of them are reported
func (d *Dispatcher) AnnounceBulletin(ctx context.Context, b content.Bulletin) (err error) {
	message, err := bulletinMessage(b)
	if err != nil {
		return err
	}

	delivered, failed := 0, 0

	for _, p := range device.Providers {
		arn, ok := d.platforms[p]
		if !ok {
			continue
		}

		rs, ferr := d.registrations.ActiveRegistrations(ctx, p)
		if ferr != nil {
			err = multierr.Append(err, errors.Wrapf(ferr, "failed to fetch %s registrations", p))
			continue
		}

		for _, r := range rs {
			if r.Token == "" {
				continue
			}

			if derr := d.deliver(ctx, arn, r.Token, message); derr != nil {
				failed++
				err = multierr.Append(err, errors.Wrapf(derr, "account %s", r.AccountID))
				continue
			}

			delivered++
		}
	}

	d.Logger().Info(
		"announced bulletin",
		zap.Int64("id", b.ID),
		zap.Int("delivered", delivered),
		zap.Int("failed", failed),
	)

	return err
}

func (d *Dispatcher) deliver(ctx context.Context, platformARN, token, message string) error {
	endpoint, err := d.client.CreatePlatformEndpointWithContext(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(platformARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create platform endpoint")
	}

	_, err = d.client.PublishWithContext(ctx, &sns.PublishInput{
		MessageStructure: aws.String("json"),
		Message:          aws.String(message),
		TargetArn:        endpoint.EndpointArn,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish")
	}

	return nil
}

// bulletinMessage builds an SNS message with a payload for each platform,
// platform payloads are themselves JSON encoded strings
func bulletinMessage(b content.Bulletin) (string, error) {
	data := map[string]string{
		"kind": content.KBulletin.String(),
		"id":   strconv.FormatInt(b.ID, 10),
	}

	apns, err := json.MarshalToString(map[string]interface{}{
		"aps": map[string]interface{}{
			"alert": map[string]string{"title": b.Title},
			"sound": "default",
		},
		"data": data,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode apns payload")
	}

	gcm, err := json.MarshalToString(map[string]interface{}{
		"notification": map[string]string{"title": b.Title},
		"data":         data,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode gcm payload")
	}

	message, err := json.MarshalToString(map[string]string{
		"default": b.Title,
		"APNS":    apns,
		"GCM":     gcm,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode message")
	}

	return message, nil
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttPublishTimeout = 3 * time.Second

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher шлёт уведомление в персональный топик участника: <root>/<member_id>.
type MQTTPublisher struct {
	client mqttPublisher
	root   string
}

func NewMQTTPublisher(broker, clientID, root string) (*MQTTPublisher, mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTPublisher{client: client, root: root}, client, nil
}

func (p *MQTTPublisher) Send(ctx context.Context, recipients []int64, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range recipients {
		if err := ctx.Err(); err != nil {
			return err
		}
		topic := fmt.Sprintf("%s/%d", p.root, id)
		token := p.client.Publish(topic, 1, false, payload)
		if !token.WaitTimeout(mqttPublishTimeout) {
			errs = append(errs, fmt.Errorf("publish to %s: timeout", topic))
			continue
		}
		if err := token.Error(); err != nil {
			errs = append(errs, fmt.Errorf("publish to %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}

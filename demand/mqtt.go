package demand

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
)

const inactivityLimit = 5 * time.Minute

// meterMessage is the payload published by the demand meter. A missing
// timestamp means "now".
type meterMessage struct {
	Ts string  `json:"ts"`
	KW float64 `json:"kw"`
}

// Meter subscribes to the demand meter's MQTT topic and appends each
// reading to the per-day demand log. It is the single writer of those
// files; readers only ever see whole appended lines.
type Meter struct {
	mqttClient   mqtt.Client
	logger       *slog.Logger
	files        *store.Files
	topic        string
	lastMessage  concurrentTimer
	stopMonitor  chan struct{}
	OnInactivity func()
}

func NewMeter(broker string, port int16, username, password, topic string, files *store.Files) *Meter {
	logger := slog.Default().With("module", "demand")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID("ercotsum")
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("demand meter MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("demand meter MQTT connection lost", slog.Any("error", err))
	}

	mqttLogger := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLogger, slog.LevelWarn)

	return &Meter{
		mqttClient: mqtt.NewClient(opts),
		logger:     logger,
		files:      files,
		topic:      topic,
	}
}

func (m *Meter) Connect() error {
	m.logger.Debug("connecting demand meter MQTT client")

	if token := m.mqttClient.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	m.inactivityWatchdog()

	token := m.mqttClient.Subscribe(m.topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		m.lastMessage.Reset()

		var reading meterMessage
		if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
			m.logger.Error("error when reading meter message", slog.Any("error", err))
			return
		}

		at := time.Now()
		if reading.Ts != "" {
			parsed, err := hours.ParseLenient(reading.Ts)
			if err != nil {
				m.logger.Warn("meter message with bad timestamp, using now", slog.Any("error", err))
			} else {
				at = parsed
			}
		}

		line := fmt.Sprintf("%s %.3f", hours.Stamp(at), reading.KW)
		if err := m.files.AppendDayLine(at, store.DemandFile, line); err != nil {
			m.logger.Error("error when recording demand sample", slog.Any("error", err))
		}
	})

	if token.Wait() && token.Error() != nil {
		return token.Error()
	}

	return nil
}

func (m *Meter) Disconnect() {
	m.logger.Info("disconnecting demand meter MQTT client")
	if m.stopMonitor != nil {
		close(m.stopMonitor)
		m.stopMonitor = nil
	}

	token := m.mqttClient.Unsubscribe(m.topic)
	token.WaitTimeout(1 * time.Second)
	if token.Error() != nil {
		m.logger.Error("error unsubscribing from meter topic", slog.Any("error", token.Error()))
	}

	m.mqttClient.Disconnect(250)
}

func (m *Meter) inactivityWatchdog() {
	m.lastMessage.Reset()
	m.stopMonitor = make(chan struct{})

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopMonitor:
				return
			case <-ticker.C:
				if m.lastMessage.Elapsed() > inactivityLimit {
					m.logger.Warn("no demand meter traffic", slog.Duration("limit", inactivityLimit))
					if m.OnInactivity != nil {
						m.OnInactivity()
					}
				}
			}
		}
	}()
}

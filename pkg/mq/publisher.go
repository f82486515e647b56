// Package mq 将访客申请生命周期事件发布到 RabbitMQ。
// 发布属于尽力而为：失败只记录日志并返回错误，调用方不应因此中断主流程。
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/fatymarishu/gatepass/config"
)

// 事件路由键
const (
	EventRequestCreated  = "visitor.request.created"
	EventRequestAdvanced = "visitor.request.advanced"
	EventRequestApproved = "visitor.request.approved"
	EventRequestRejected = "visitor.request.rejected"
	EventVisitUpdated    = "visitor.visit.updated"
)

// Event 访客申请事件
type Event struct {
	Type          string    `json:"type"`
	RequestID     string    `json:"requestId"`
	TrackingCode  string    `json:"trackingCode"`
	WarehouseID   string    `json:"warehouseId"`
	Status        string    `json:"status"`
	VisitStatus   string    `json:"visitStatus,omitempty"`
	CurrentStepNo int       `json:"currentStepNo,omitempty"`
	ActorID       string    `json:"actorId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ── Nop ──

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// ── RabbitMQ ──

const (
	dialTimeout = 3 * time.Second
	heartbeat   = 10 * time.Second
)

// ErrNotConnected 连接不可用，后台重连尚未完成
var ErrNotConnected = errors.New("rabbitmq 未连接")

// RabbitPublisher 复用单条连接与 channel
// 连接或 channel 失效时 Publish 立即返回 ErrNotConnected，并在后台发起一次重连
type RabbitPublisher struct {
	url      string
	exchange string
	logger   *zap.Logger

	mu           sync.Mutex
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
	closed       bool
}

// NewRabbitPublisher 建立连接并声明 topic exchange
func NewRabbitPublisher(cfg *config.MQConfig, logger *zap.Logger) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: cfg.URL, exchange: cfg.Exchange, logger: logger}
	conn, ch, err := p.open(nil)
	if err != nil {
		return nil, err
	}
	p.conn, p.ch = conn, ch
	logger.Info("RabbitMQ 连接成功", zap.String("exchange", cfg.Exchange))
	return p, nil
}

// open 在 conn 仍可用时只重开 channel，否则重新拨号；调用方不持有 mu
func (p *RabbitPublisher) open(conn *amqp.Connection) (*amqp.Connection, *amqp.Channel, error) {
	dialed := false
	if conn == nil || conn.IsClosed() {
		var err error
		conn, err = amqp.DialConfig(p.url, amqp.Config{
			Heartbeat: heartbeat,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(dialTimeout),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq dial 失败: %w", err)
		}
		dialed = true
	}
	closeConn := func() {
		if dialed {
			_ = conn.Close()
		}
	}

	ch, err := conn.Channel()
	if err != nil {
		closeConn()
		return nil, nil, fmt.Errorf("rabbitmq 打开 channel 失败: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		closeConn()
		return nil, nil, fmt.Errorf("rabbitmq 声明 exchange 失败: %w", err)
	}
	return conn, ch, nil
}

// usable 需持有 mu
func (p *RabbitPublisher) usable() bool {
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

// scheduleReconnect 需持有 mu；同一时刻只有一个重连在进行
func (p *RabbitPublisher) scheduleReconnect() {
	if p.reconnecting || p.closed {
		return
	}
	p.reconnecting = true
	go p.reconnect(p.conn)
}

func (p *RabbitPublisher) reconnect(prev *amqp.Connection) {
	conn, ch, err := p.open(prev)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.reconnecting = false
	if err != nil {
		p.logger.Warn("RabbitMQ 重连失败", zap.Error(err))
		return
	}
	if p.closed {
		_ = ch.Close()
		if conn != prev {
			_ = conn.Close()
		}
		return
	}
	if conn != prev && prev != nil {
		_ = prev.Close()
	}
	p.conn, p.ch = conn, ch
	p.logger.Info("RabbitMQ 重连成功")
}

// Publish 以持久化消息发布事件，routing key 即事件类型
func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	p.mu.Lock()
	if !p.usable() {
		p.scheduleReconnect()
		p.mu.Unlock()
		p.logger.Warn("RabbitMQ 未连接，事件丢弃",
			zap.String("type", event.Type),
			zap.String("request_id", event.RequestID),
		)
		return ErrNotConnected
	}
	ch := p.ch
	p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt.UTC(),
		Type:         event.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		p.logger.Warn("RabbitMQ 发布事件失败",
			zap.String("type", event.Type),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Close 关闭 channel 与连接，之后不再重连
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

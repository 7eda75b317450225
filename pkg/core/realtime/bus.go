package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// busOptions 事件总线选项
type busOptions struct {
	debug bool
	trace bool
}

// BusOption 事件总线选项函数
type BusOption func(*busOptions)

// WithDebugLog 打开watermill的debug/trace日志
func WithDebugLog(debug, trace bool) BusOption {
	return func(o *busOptions) {
		o.debug = debug
		o.trace = trace
	}
}

// subscription 进程内订阅
type subscription struct {
	id        SubscriptionID
	eventType EventType // 为空表示订阅全部事件
	handler   EventHandler
}

// EventBus 基于watermill gochannel的进程内事件总线（对外导出）
// 每种事件类型一个topic，路由器为每个topic注册一个分发处理器，再分发给订阅者
type EventBus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter

	subscriptions  sync.Map // SubscriptionID -> *subscription
	subscriptionID int64    // atomic
	published      int64    // atomic

	ctx    context.Context
	cancel context.CancelFunc
	closed int32 // atomic
	done   chan struct{}
}

// NewEventBus 创建并启动事件总线
func NewEventBus(opts ...BusOption) (*EventBus, error) {
	options := &busOptions{}
	for _, opt := range opts {
		opt(options)
	}

	logger := watermill.NewStdLogger(options.debug, options.trace)

	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)

	msgRouter, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("创建消息路由器失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &EventBus{
		pubsub: pubsub,
		router: msgRouter,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	for _, eventType := range AllEventTypes {
		msgRouter.AddNoPublisherHandler(
			"dispatch_"+string(eventType),
			string(eventType),
			pubsub,
			bus.dispatch,
		)
	}

	go func() {
		defer close(bus.done)
		if err := msgRouter.Run(ctx); err != nil {
			log.Printf("❌ [事件总线] 路由器退出: %v", err)
		}
	}()

	select {
	case <-msgRouter.Running():
	case <-time.After(5 * time.Second):
		cancel()
		return nil, fmt.Errorf("事件总线启动超时")
	}

	log.Printf("✅ [事件总线] 已启动，topics=%d", len(AllEventTypes))
	return bus, nil
}

// Publish 发布事件
func (b *EventBus) Publish(ctx context.Context, event *Event) error {
	if atomic.LoadInt32(&b.closed) == 1 {
		return fmt.Errorf("事件总线已关闭")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	// 序列化事件
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	// 创建 Watermill 消息
	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("correlation_id", event.CorrelationID)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339Nano))
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(string(event.Type), msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}

	atomic.AddInt64(&b.published, 1)
	return nil
}

// Subscribe 订阅事件，eventType为空表示订阅全部事件
func (b *EventBus) Subscribe(eventType EventType, handler EventHandler) SubscriptionID {
	id := SubscriptionID(fmt.Sprintf("sub-%d", atomic.AddInt64(&b.subscriptionID, 1)))
	b.subscriptions.Store(id, &subscription{
		id:        id,
		eventType: eventType,
		handler:   handler,
	})
	return id
}

// Unsubscribe 取消订阅
func (b *EventBus) Unsubscribe(id SubscriptionID) {
	b.subscriptions.Delete(id)
}

// Published 已发布事件数
func (b *EventBus) Published() int64 {
	return atomic.LoadInt64(&b.published)
}

// dispatch 路由器处理器：反序列化后分发给匹配的订阅者
// 订阅者返回的错误只记录日志，消息始终ack，避免gochannel重投
func (b *EventBus) dispatch(msg *message.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Printf("⚠️ [事件总线] 消息反序列化失败: ID=%s, Error=%v", msg.UUID, err)
		return nil
	}

	b.subscriptions.Range(func(_, value interface{}) bool {
		sub := value.(*subscription)
		if sub.eventType != "" && sub.eventType != event.Type {
			return true
		}
		if err := sub.handler(&event); err != nil {
			log.Printf("⚠️ [事件总线] 订阅者处理失败: Sub=%s, Event=%s, Error=%v", sub.id, event.Type, err)
		}
		return true
	})
	return nil
}

// Close 关闭事件总线
func (b *EventBus) Close() error {
	if !atomic.CompareAndSwapInt32(&b.closed, 0, 1) {
		return nil
	}
	if err := b.router.Close(); err != nil {
		log.Printf("⚠️ [事件总线] 关闭路由器失败: %v", err)
	}
	b.cancel()
	<-b.done
	if err := b.pubsub.Close(); err != nil {
		return fmt.Errorf("关闭gochannel失败: %w", err)
	}
	log.Println("✅ [事件总线] 已关闭")
	return nil
}

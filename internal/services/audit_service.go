package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"torgplus/server/internal/models"
)

// AuditService пишет журнал аудита по одной записи на успешную мутацию
//
// Запись СОЗНАТЕЛЬНО best-effort: бизнес-транзакция сначала коммитится,
// затем отдельно пишется строка аудита и (если настроена Kafka) публикуется
// JSON-копия события. Сбой любого из путей логируется и не откатывает
// бизнес-операцию - торговля важнее форензики
type AuditService struct {
	db          *gorm.DB
	kafkaWriter *kafka.Writer
}

// NewAuditService создает новый сервис аудита
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// SetKafkaWriter подключает публикацию событий аудита в Kafka
// brokers - список брокеров через запятую, topic - топик событий
func (s *AuditService) SetKafkaWriter(brokers, topic string) {
	if brokers == "" || topic == "" {
		return
	}
	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}
	s.kafkaWriter = &kafka.Writer{
		Addr:     kafka.TCP(brokerList...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true, // Асинхронная отправка, мутации не ждут брокера
	}
	log.Printf("✅ Kafka producer аудита подключен к %s (топик %s)", brokers, topic)
}

// Record фиксирует успешную мутацию в журнале
// before/after - снимки сущности до и после, nil допустим (CREATE/DELETE)
func (s *AuditService) Record(caller Caller, action models.AuditAction, entityType, entityID string, before, after interface{}) {
	record := models.AuditRecord{
		Actor:        caller.Actor,
		Action:       action,
		EntityType:   entityType,
		EntityID:     entityID,
		Before:       marshalSnapshot(before),
		After:        marshalSnapshot(after),
		Origin:       caller.Origin,
		BusinessUnit: caller.Unit,
	}

	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("⚠️ Аудит: не удалось записать %s %s/%s: %v", action, entityType, entityID, err)
	}

	s.publish(record)
}

// publish отправляет JSON-копию события в Kafka (если настроена)
func (s *AuditService) publish(record models.AuditRecord) {
	if s.kafkaWriter == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		log.Printf("⚠️ Аудит: сериализация события %s: %v", record.EntityID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(record.EntityID),
		Value: payload,
	}); err != nil {
		// Топик может создаваться автоматически при первой записи
		if !strings.Contains(err.Error(), "Unknown Topic Or Partition") {
			log.Printf("⚠️ Аудит: Kafka отклонила событие %s: %v", record.EntityID, err)
		}
	}
}

// Close закрывает Kafka writer
func (s *AuditService) Close() {
	if s.kafkaWriter != nil {
		s.kafkaWriter.Close()
	}
}

// List возвращает последние записи журнала для подразделения
func (s *AuditService) List(caller Caller, limit int) ([]models.AuditRecord, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []models.AuditRecord
	err := s.db.Where("business_unit = ?", caller.Unit).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// marshalSnapshot превращает снимок сущности в JSON строку
func marshalSnapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

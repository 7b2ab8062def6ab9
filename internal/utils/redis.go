package utils

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient - обертка над Redis клиентом для кэша отчетов
// Все методы терпимы к отсутствию ключа, вызывающий сам решает, что делать
// при промахе
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient создает новую обертку
func NewRedisClient(client *redis.Client) *RedisClient {
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// SetJSON сохраняет значение как JSON с TTL
func (r *RedisClient) SetJSON(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, key, string(data), ttl).Err()
}

// GetJSON читает и парсит JSON значение
// Возвращает (false, nil) при отсутствии ключа
func (r *RedisClient) GetJSON(key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(r.ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Delete удаляет ключ
func (r *RedisClient) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

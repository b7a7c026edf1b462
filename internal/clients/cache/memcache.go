package cache

import (
	"github.com/pkg/errors"

	"go.uber.org/zap"
	"max.ks1230/fintrack/internal/logger"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheClient caches rendered dashboards between change events, keyed
// by owner id and period.
type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func formatKey(ownerID, period string) string {
	return ownerID + ":" + period
}

func (mc *MemcacheClient) CacheReport(ownerID, period, report string) error {
	logger.Info("cache report", zap.String("ownerID", ownerID), zap.String("period", period))
	return mc.client.Set(&memcache.Item{
		Key:   formatKey(ownerID, period),
		Value: []byte(report),
	})
}

func (mc *MemcacheClient) GetReport(ownerID, period string) (string, error) {
	item, err := mc.client.Get(formatKey(ownerID, period))
	if err != nil {
		return "", err
	}
	return string(item.Value), nil
}

// InvalidateReports drops every cached period for the owner. Wired to the
// change bus so stale dashboards never outlive a mutation.
func (mc *MemcacheClient) InvalidateReports(ownerID string, periods []string) error {
	logger.Info("invalidate cached reports", zap.String("ownerID", ownerID))

	for _, p := range periods {
		err := mc.client.Delete(formatKey(ownerID, p))
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			return err
		}
	}
	return nil
}

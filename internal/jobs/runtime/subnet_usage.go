package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"time"

	"ipamd/internal/api/dto"
	"ipamd/internal/config"
	"ipamd/internal/database"
	"ipamd/internal/domain"
	"ipamd/internal/ipam"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	usageKeyPrefix   = "ipamd:usage:"
	usageValueTTL    = time.Hour
	usageConcurrency = 8
)

// StartSubnetUsageRoutine periodically snapshots per-subnet utilization
// into redis, where the dashboard reads it without hitting the database
// for every page load. The interval follows configuration updates.
func StartSubnetUsageRoutine(ctx context.Context, client *redis.Client) {
	intervals := config.UsageSnapshotIntervalUpdates()
	interval := <-intervals

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	SnapshotSubnetUsage(ctx, client)

	for {
		select {
		case <-ctx.Done():
			return
		case interval = <-intervals:
			ticker.Reset(interval)
			log.Debug("Subnet usage snapshot interval updated", "interval", interval)
		case <-ticker.C:
			SnapshotSubnetUsage(ctx, client)
		}
	}
}

// SnapshotSubnetUsage computes utilization for every subnet with bounded
// concurrency and caches each snapshot under its own key.
func SnapshotSubnetUsage(ctx context.Context, client *redis.Client) {
	subnets, err := database.GetAllSubnets()
	if err != nil {
		log.Error("Could not list subnets for usage snapshot", "error", err)
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(usageConcurrency)

	for _, subnet := range subnets {
		group.Go(func() error {
			usage, err := ComputeSubnetUsage(&subnet)
			if err != nil {
				log.Error("Could not compute subnet usage", "subnet", subnet.CIDR, "error", err)
				return nil
			}

			payload, err := json.Marshal(usage)
			if err != nil {
				return err
			}
			key := fmt.Sprintf("%s%d", usageKeyPrefix, subnet.ID)
			if err := client.Set(groupCtx, key, payload, usageValueTTL).Err(); err != nil {
				log.Error("Could not cache subnet usage", "key", key, "error", err)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("Subnet usage snapshot failed", "error", err)
	}
}

// ComputeSubnetUsage derives one utilization snapshot: an O(1) host count
// from the address space plus a single count query for allocations.
func ComputeSubnetUsage(subnet *domain.Subnet) (dto.SubnetUsage, error) {
	prefix, err := subnet.Prefix()
	if err != nil {
		return dto.SubnetUsage{}, err
	}
	space, err := ipam.NewAddressSpace(prefix)
	if err != nil {
		return dto.SubnetUsage{}, err
	}

	used := database.CountAddresses(subnet.ID)
	hostCount := space.HostCount()

	ratio, _ := new(big.Float).Quo(
		new(big.Float).SetInt64(used),
		new(big.Float).SetInt(hostCount),
	).Float64()

	return dto.SubnetUsage{
		SubnetID:    subnet.ID,
		Name:        subnet.Name,
		CIDR:        subnet.CIDR,
		UsedCount:   used,
		HostCount:   hostCount.String(),
		Utilization: ratio,
	}, nil
}

// CachedUsage returns the snapshots currently in redis, ordered by
// subnet id. Missing or expired entries are simply absent.
func CachedUsage(ctx context.Context, client *redis.Client) ([]dto.SubnetUsage, error) {
	keys, err := client.Keys(ctx, usageKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	usages := make([]dto.SubnetUsage, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var usage dto.SubnetUsage
		if err := json.Unmarshal([]byte(raw), &usage); err != nil {
			continue
		}
		usages = append(usages, usage)
	}

	sort.Slice(usages, func(i, j int) bool {
		return usages[i].SubnetID < usages[j].SubnetID
	})
	return usages, nil
}

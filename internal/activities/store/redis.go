// internal/activities/store/redis.go
package store

import (
	"context"
	"fmt"
	"strconv"

	"mergington-activities/internal/activities"

	"github.com/redis/go-redis/v9"
)

// Redis keeps rosters in Redis so they survive restarts and can be shared
// between instances.
//
// Layout, all under the configured prefix:
//
//	activities:index              list of names in seed order
//	activity:<name>               hash of description, schedule, max_participants
//	activity:<name>:participants  list of emails in signup order
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) indexKey() string {
	return s.prefix + "activities:index"
}

func (s *Redis) activityKey(name string) string {
	return s.prefix + "activity:" + name
}

func (s *Redis) participantsKey(name string) string {
	return s.prefix + "activity:" + name + ":participants"
}

func (s *Redis) Seed(ctx context.Context, seed []activities.Activity) error {
	for _, a := range seed {
		exists, err := s.client.Exists(ctx, s.activityKey(a.Name)).Result()
		if err != nil {
			return fmt.Errorf("redis exists %s: %w", a.Name, err)
		}
		if exists > 0 {
			continue
		}

		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.activityKey(a.Name), map[string]interface{}{
				"description":      a.Description,
				"schedule":         a.Schedule,
				"max_participants": a.MaxParticipants,
			})
			if len(a.Participants) > 0 {
				emails := make([]interface{}, len(a.Participants))
				for i, p := range a.Participants {
					emails[i] = p
				}
				pipe.RPush(ctx, s.participantsKey(a.Name), emails...)
			}
			pipe.RPush(ctx, s.indexKey(), a.Name)
			return nil
		})
		if err != nil {
			return fmt.Errorf("redis seed %s: %w", a.Name, err)
		}
	}
	return nil
}

func (s *Redis) List(ctx context.Context) ([]activities.Activity, error) {
	names, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list index: %w", err)
	}

	out := make([]activities.Activity, 0, len(names))
	for _, name := range names {
		a, found, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Redis) Get(ctx context.Context, name string) (activities.Activity, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.activityKey(name)).Result()
	if err != nil {
		return activities.Activity{}, false, fmt.Errorf("redis get %s: %w", name, err)
	}
	if len(fields) == 0 {
		return activities.Activity{}, false, nil
	}

	maxParticipants, err := strconv.Atoi(fields["max_participants"])
	if err != nil {
		return activities.Activity{}, false, fmt.Errorf("redis get %s: bad max_participants %q: %w", name, fields["max_participants"], err)
	}

	participants, err := s.client.LRange(ctx, s.participantsKey(name), 0, -1).Result()
	if err != nil {
		return activities.Activity{}, false, fmt.Errorf("redis get participants %s: %w", name, err)
	}
	if participants == nil {
		participants = []string{}
	}

	return activities.Activity{
		Name:            name,
		Description:     fields["description"],
		Schedule:        fields["schedule"],
		MaxParticipants: maxParticipants,
		Participants:    participants,
	}, true, nil
}

func (s *Redis) AppendParticipant(ctx context.Context, name, email string) error {
	exists, err := s.client.Exists(ctx, s.activityKey(name)).Result()
	if err != nil {
		return fmt.Errorf("redis exists %s: %w", name, err)
	}
	if exists == 0 {
		return activities.ErrUnknownActivity
	}
	if err := s.client.RPush(ctx, s.participantsKey(name), email).Err(); err != nil {
		return fmt.Errorf("redis append %s: %w", name, err)
	}
	return nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

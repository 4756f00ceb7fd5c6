package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingRecordVersionV1 = 1
)

var (
	ErrPendingNotFound         = errors.New("pending verification record not found")
	ErrPendingRedisUnavailable = errors.New("pending verification redis unavailable")
)

// PendingVerificationRecord remembers a verification challenge across page
// loads: which email is being verified and when resending is allowed again.
type PendingVerificationRecord struct {
	Email          string
	ResendDeadline int64
	ExpiresAt      int64
}

type PendingVerificationStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewPendingVerificationStore(redisClient redis.UniversalClient, prefix string) *PendingVerificationStore {
	if prefix == "" {
		prefix = "gsp"
	}
	return &PendingVerificationStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *PendingVerificationStore) key(sessionKey string) string {
	return s.prefix + ":pending:" + sessionKey
}

func (s *PendingVerificationStore) Save(
	ctx context.Context,
	sessionKey string,
	record *PendingVerificationRecord,
	ttl time.Duration,
) error {
	record.ExpiresAt = time.Now().Add(ttl).Unix()

	encoded, err := encodePendingVerificationRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(sessionKey), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}

	return nil
}

func (s *PendingVerificationStore) Get(ctx context.Context, sessionKey string) (*PendingVerificationRecord, error) {
	data, err := s.redis.Get(ctx, s.key(sessionKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}

	record, err := decodePendingVerificationRecord(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > record.ExpiresAt {
		return nil, ErrPendingNotFound
	}

	return record, nil
}

func (s *PendingVerificationStore) Delete(ctx context.Context, sessionKey string) error {
	if err := s.redis.Del(ctx, s.key(sessionKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}
	return nil
}

// TouchResendDeadline moves the record's resend deadline forward after a
// successful resend. Concurrent tabs can race here, so the update runs under
// WATCH with optimistic retry.
func (s *PendingVerificationStore) TouchResendDeadline(
	ctx context.Context,
	sessionKey string,
	resendDeadline int64,
) error {
	const maxRetries = 4
	key := s.key(sessionKey)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodePendingVerificationRecord(data)
			if err != nil {
				return err
			}

			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrPendingNotFound
			}

			record.ResendDeadline = resendDeadline

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrPendingNotFound
			}

			updated, err := encodePendingVerificationRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return ErrPendingNotFound
			case errors.Is(err, ErrPendingNotFound):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
			}
		}

		return nil
	}

	return ErrPendingNotFound
}

func encodePendingVerificationRecord(record *PendingVerificationRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(pendingRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.ResendDeadline); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.Email) > 65535 {
		return nil, errors.New("pending verification email too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.Email))); err != nil {
		return nil, err
	}
	buf.WriteString(record.Email)

	return buf.Bytes(), nil
}

func decodePendingVerificationRecord(data []byte) (*PendingVerificationRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != pendingRecordVersionV1 {
		return nil, errors.New("invalid pending verification record version")
	}

	record := &PendingVerificationRecord{}

	if err := binary.Read(reader, binary.BigEndian, &record.ResendDeadline); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var emailLen uint16
	if err := binary.Read(reader, binary.BigEndian, &emailLen); err != nil {
		return nil, err
	}

	email := make([]byte, emailLen)
	if _, err := io.ReadFull(reader, email); err != nil {
		return nil, err
	}
	record.Email = string(email)

	return record, nil
}

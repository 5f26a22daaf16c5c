package app

import (
	"context"
	"fmt"
	"time"

	"talk_message_service/internal/message/domain"
	"talk_message_service/internal/message/repository"
	"talk_message_service/pkg/logger"

	"go.uber.org/zap"
)

// Archiver drains hot buffer overflow into cold buckets on a fixed
// interval. The loop is process-lifetime: per-conversation failures are
// logged and retried on the next tick, never aborting the loop.
type Archiver struct {
	hot      repository.HotMessageRepository
	cold     repository.ColdMessageRepository
	seq      *Sequencer
	locks    *ConversationLocks
	interval time.Duration
	limits   map[domain.ConversationKind]domain.HotLimit
}

// NewArchiver create an Archiver with per-kind drain limits
func NewArchiver(
	hot repository.HotMessageRepository,
	cold repository.ColdMessageRepository,
	seq *Sequencer,
	locks *ConversationLocks,
	interval time.Duration,
	limits map[domain.ConversationKind]domain.HotLimit,
) *Archiver {
	return &Archiver{
		hot:      hot,
		cold:     cold,
		seq:      seq,
		locks:    locks,
		interval: interval,
		limits:   limits,
	}
}

// Run loops until ctx is cancelled, draining every overflowing conversation
// once per tick.
func (a *Archiver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	logger.Log.Info("archiver started", zap.Duration("interval", a.interval))

	for {
		select {
		case <-ticker.C:
			a.Tick(ctx)
		case <-ctx.Done():
			logger.Log.Info("archiver stopped")
			return
		}
	}
}

// Tick scans every stored conversation kind and drains the overflowing ones.
// One conversation's failure never blocks the rest of the tick.
func (a *Archiver) Tick(ctx context.Context) {
	for kind, limit := range a.limits {
		ids, err := a.hot.ScanConversations(ctx, kind)
		if err != nil {
			logger.Log.Errorf("archiver scan failed", err, zap.String("kind", string(kind)))
			continue
		}

		for _, conversationID := range ids {
			if err := a.DrainConversation(ctx, kind, conversationID, limit); err != nil {
				logger.Log.Errorf("archiver drain failed", err,
					zap.String("kind", string(kind)),
					zap.String("conversation_id", conversationID),
				)
			}
		}
	}
}

// DrainConversation moves the overflow of one hot buffer into a new cold
// bucket. The hot buffer is only truncated after the bucket insert is
// confirmed; on storage failure it stays untouched and the next tick
// retries.
func (a *Archiver) DrainConversation(ctx context.Context, kind domain.ConversationKind, conversationID string, limit domain.HotLimit) error {
	// cheap length probe before taking the lock and reading the buffer
	n, err := a.hot.Len(ctx, kind, conversationID)
	if err != nil {
		return err
	}
	if n <= int64(limit.Threshold) {
		return nil
	}

	lock := a.locks.Get(kind, conversationID)
	lock.Lock()
	defer lock.Unlock()

	msgs, err := a.hot.ReadAll(ctx, kind, conversationID)
	if err != nil {
		return err
	}
	// recheck under the lock; a concurrent unsend may have shrunk the buffer
	if len(msgs) <= limit.Threshold {
		return nil
	}

	overflow := msgs[:len(msgs)-limit.KeepTail]
	remaining := msgs[len(msgs)-limit.KeepTail:]

	hasUnseen := false
	for _, msg := range overflow {
		if !msg.Seen {
			hasUnseen = true
			break
		}
	}
	if hasUnseen {
		if err := a.hot.SetUnseenFlag(ctx, kind, conversationID); err != nil {
			return fmt.Errorf("failed to set unseen flag: %w", err)
		}
	}

	bucketSeq, err := a.seq.NextBucketSequence(ctx, conversationID)
	if err != nil {
		return err
	}

	bucket := &domain.MessageBucket{
		ConversationID: conversationID,
		Kind:           kind,
		Sequence:       bucketSeq,
		Messages:       overflow,
		CreatedAt:      time.Now(),
	}
	if err := a.cold.AppendBucket(ctx, bucket); err != nil {
		return fmt.Errorf("failed to archive bucket %d: %w", bucketSeq, err)
	}

	if err := a.hot.ReplaceAll(ctx, kind, conversationID, remaining); err != nil {
		return fmt.Errorf("failed to trim hot buffer after archiving: %w", err)
	}

	logger.Log.Info("archived hot overflow",
		zap.String("conversation_id", conversationID),
		zap.Int64("bucket_sequence", bucketSeq),
		zap.Int("moved", len(overflow)),
		zap.Int("retained", len(remaining)),
	)
	return nil
}

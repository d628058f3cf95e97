package bridge

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// VerifyBatch verifies proofs concurrently, as VerifyPacket does, and
// returns the first failure. The remaining verifications are cancelled once
// one fails. No sequence is consumed.
func (r *Receiver) VerifyBatch(ctx context.Context, proofs []PacketProof, now time.Time) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range proofs {
		i := i
		g.Go(func() error {
			if err := r.VerifyPacket(ctx, proofs[i], now); err != nil {
				return fmt.Errorf("packet proof %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// ReceiveBatch verifies proofs concurrently and, only if all of them are
// valid, receives them in order. It stops at the first packet that cannot
// be received, leaving the earlier ones received.
func (r *Receiver) ReceiveBatch(ctx context.Context, proofs []PacketProof, now time.Time) error {
	if err := r.VerifyBatch(ctx, proofs, now); err != nil {
		return err
	}
	for i, proof := range proofs {
		if err := r.Receive(ctx, proof, now); err != nil {
			return fmt.Errorf("packet proof %d: %w", i, err)
		}
	}
	return nil
}

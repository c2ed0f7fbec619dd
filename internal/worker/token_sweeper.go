package worker

import (
	"log"
	"time"

	"github.com/stockroom-api/internal/repository"
)

// TokenSweeper periodically clears password reset tokens that outlived
// their one hour validity, so stale tokens do not linger in the store.
type TokenSweeper struct {
	userRepo *repository.UserRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewTokenSweeper creates a new reset token sweeper
func NewTokenSweeper(userRepo *repository.UserRepository, interval time.Duration) *TokenSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute // Default sweep interval
	}
	return &TokenSweeper{
		userRepo: userRepo,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop
func (w *TokenSweeper) Start() {
	log.Printf("Token sweeper started with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopChan:
			log.Println("Token sweeper stopped")
			return
		}
	}
}

// Stop stops the sweep loop
func (w *TokenSweeper) Stop() {
	close(w.stopChan)
}

// sweep clears all expired reset tokens
func (w *TokenSweeper) sweep() {
	swept, err := w.userRepo.ClearExpiredResetTokens(time.Now())
	if err != nil {
		log.Printf("Token sweeper: failed to clear expired tokens: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("Token sweeper: cleared %d expired reset token(s)", swept)
	}
}

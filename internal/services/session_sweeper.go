// session_sweeper.go
//
// K9 management data service: dogs, trainers and training journals
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of k9-management.
// k9-management is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// k9-management is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with k9-management.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
)

// SessionSweeper periodically removes expired and inactive sessions
type SessionSweeper struct {
	db       *gorm.DB
	interval time.Duration
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSessionSweeper creates a sweeper; it does nothing until Start
func NewSessionSweeper(db *gorm.DB, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionSweeper{
		db:       db,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins sweeping in the background
func (s *SessionSweeper) Start() {
	log.Printf("Starting session sweeper every %v", s.interval)

	s.ticker = time.NewTicker(s.interval)

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.ticker.C:
				s.Sweep()
			case <-s.stopChan:
				s.ticker.Stop()
				log.Println("Session sweeper stopped")
				return
			}
		}
	}()
}

// Stop ends the sweeper and waits for an in-flight sweep to finish
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.ticker != nil {
			<-s.done
		}
	})
}

// Sweep runs one cleanup pass
func (s *SessionSweeper) Sweep() int64 {
	removed, err := CleanupExpiredSessions(s.db)
	if err != nil {
		log.Printf("Session cleanup failed: %v", err)
		return 0
	}
	if removed > 0 {
		log.Printf("Removed %d expired or inactive sessions", removed)
	}
	return removed
}

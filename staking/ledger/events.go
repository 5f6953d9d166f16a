// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/storage"
)

func (s *Service) emit(ev *Event) error {
	seq, _, err := s.eventCount.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get event count")
	}
	ev.Seq = seq
	if err := s.events.Set(storage.Uint64Key(seq), ev); err != nil {
		return errors.Wrap(err, "failed to set event")
	}
	if err := s.eventCount.Set(seq + 1); err != nil {
		return errors.Wrap(err, "failed to set event count")
	}
	s.pending = append(s.pending, ev)
	return nil
}

// TakeEvents returns and clears the events emitted since the last call.
func (s *Service) TakeEvents() []*Event {
	evs := s.pending
	s.pending = nil
	return evs
}

// EventCount returns the length of the audit trail.
func (s *Service) EventCount() (uint64, error) {
	n, _, err := s.eventCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get event count")
	}
	return n, nil
}

// Events returns up to limit audit trail entries starting at sequence from.
func (s *Service) Events(from, limit uint64) ([]*Event, error) {
	n, err := s.EventCount()
	if err != nil {
		return nil, err
	}
	if from >= n {
		return []*Event{}, nil
	}
	end := n
	if limit > 0 && from+limit < n {
		end = from + limit
	}
	evs := make([]*Event, 0, end-from)
	for seq := from; seq < end; seq++ {
		ev, err := s.events.Get(storage.Uint64Key(seq))
		if err != nil {
			return nil, errors.Wrap(err, "failed to get event")
		}
		evs = append(evs, ev)
	}
	return evs, nil
}

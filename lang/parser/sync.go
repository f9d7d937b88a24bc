package parser

import (
	"slices"

	"github.com/dhamidi/minirs/lang/token"
)

// SyncAction tells the recovery loop what to do with the current token.
type SyncAction int

const (
	// SyncSkip discards the token and keeps scanning.
	SyncSkip SyncAction = iota
	// SyncConsume discards the token and ends recovery.
	SyncConsume
	// SyncStop ends recovery and leaves the token for the next command.
	SyncStop
)

func (a SyncAction) String() string {
	switch a {
	case SyncSkip:
		return "skip"
	case SyncConsume:
		return "consume"
	case SyncStop:
		return "stop"
	}
	return "unknown"
}

// SyncSet is the synchronisation set used for panic-mode recovery after a
// failed command. Terminators end a broken command and are consumed;
// Starters begin the next command (or close the block) and are kept.
type SyncSet struct {
	Terminators []token.Kind
	Starters    []token.Kind
}

func DefaultSyncSet() SyncSet {
	return SyncSet{
		Terminators: []token.Kind{token.Semicolon},
		Starters: []token.Kind{
			token.Let,
			token.If,
			token.While,
			token.Read,
			token.Print,
			token.LBrace,
			token.RBrace,
		},
	}
}

func (s SyncSet) Action(kind token.Kind) SyncAction {
	switch {
	case kind == token.EOF:
		return SyncStop
	case slices.Contains(s.Terminators, kind):
		return SyncConsume
	case slices.Contains(s.Starters, kind):
		return SyncStop
	}
	return SyncSkip
}

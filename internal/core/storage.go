package core

import (
	"context"
	"time"
)

type BanRepository interface {
	Ban(ctx context.Context, host, reason string) error
	Unban(ctx context.Context, host string) (bool, error)
	IsBanned(ctx context.Context, host string) (bool, error)
	List(ctx context.Context) ([]Ban, error)
}

type WordRepository interface {
	AddWord(ctx context.Context, word string) error
	HasWord(ctx context.Context, word string) (bool, error)
	Words(ctx context.Context) ([]string, error)
}

type Ban struct {
	Host      string    `json:"host"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

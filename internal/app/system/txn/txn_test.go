package txn

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "generic error",
			err:  errors.New("some random error"),
			want: false,
		},
		{
			name: "command error code 20",
			err:  mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"},
			want: true,
		},
		{
			name: "command error code 51",
			err:  mongo.CommandError{Code: 51, Message: "Illegal operation"},
			want: true,
		},
		{
			name: "command error code 263",
			err:  mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"},
			want: true,
		},
		{
			name: "other command error code",
			err:  mongo.CommandError{Code: 100, Message: "Some other error"},
			want: false,
		},
		{
			name: "error with transaction and replica set keywords",
			err:  errors.New("transaction failed because this is not a replica set member"),
			want: true,
		},
		{
			name: "session not supported without replica set",
			err:  errors.New("session operations are not supported on this server"),
			want: false,
		},
		{
			name: "error with only one keyword",
			err:  errors.New("transaction failed"),
			want: false,
		},
		{
			name: "transient session state error",
			err:  errors.New("cannot start transaction in current session state"),
			want: false,
		},
		{
			name: "illegal operation text without code",
			err:  errors.New("illegal operation during transaction"),
			want: false,
		},
		{
			name: "transient labeled command error",
			err:  mongo.CommandError{Code: 251, Message: "transaction aborted", Labels: []string{"TransientTransactionError"}},
			want: false,
		},
		{
			name: "wrapped command error",
			err:  fmt.Errorf("admit: %w", mongo.CommandError{Code: 20, Message: "standalone"}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNotSupported(tt.err)
			if got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNotSupported_CaseInsensitive(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "uppercase TRANSACTION and REPLICA SET",
			err:  errors.New("TRANSACTION FAILED on REPLICA SET"),
			want: true,
		},
		{
			name: "mixed case Transaction and Session",
			err:  errors.New("Transaction Session error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNotSupported(tt.err)
			if got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsWriteConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("boom"), false},
		{"command error 112", mongo.CommandError{Code: 112, Name: "WriteConflict"}, true},
		{"transient label", mongo.CommandError{Code: 251, Labels: []string{"TransientTransactionError"}}, true},
		{"wrapped transient label", fmt.Errorf("commit: %w", mongo.CommandError{Code: 251, Labels: []string{"TransientTransactionError"}}), true},
		{"other label", mongo.CommandError{Code: 6, Labels: []string{"RetryableWriteError"}}, false},
		{"unrelated command error", mongo.CommandError{Code: 11000}, false},
		{"write exception 112", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 112}}}, true},
		{"wrapped conflict", fmt.Errorf("insert: %w", mongo.CommandError{Code: 112}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWriteConflict(tt.err); got != tt.want {
				t.Errorf("IsWriteConflict(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

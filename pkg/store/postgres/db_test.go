package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/natserract/eircode/pkg/batch"
	"github.com/natserract/eircode/pkg/eircode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "eircode", cfg.Database)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.MaxConnLifetime)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password=s3cret dbname=eircode sslmode=disable", cfg.DSN())
}

func TestLookupRowFromAPIError(t *testing.T) {
	id := uuid.New()
	row, err := newLookupRow(batch.Result{
		ID:       id,
		Job:      batch.Job{Kind: batch.KindPostcode, Value: "X33 2KPH"},
		Data:     map[string]any{"errors": []any{}},
		Err:      &eircode.APIError{Domain: eircode.ErrorDomain, Code: 7, Message: "Bad key"},
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, id.String(), row.id)
	assert.Equal(t, "postcode", row.kind)
	require.NotNil(t, row.errorCode)
	assert.Equal(t, int32(7), *row.errorCode)
	require.NotNil(t, row.errorMessage)
	assert.Equal(t, "EircodeAPI error 7: Bad key", *row.errorMessage)
	assert.JSONEq(t, `{"errors":[]}`, string(row.payload))
	assert.Equal(t, int64(1500), row.durationMS)
}

func TestLookupRowTransportFailure(t *testing.T) {
	row, err := newLookupRow(batch.Result{
		ID:  uuid.New(),
		Job: batch.Job{Kind: batch.KindEcad, Value: "1701828123"},
		Err: errors.New("connection refused"),
	})
	require.NoError(t, err)

	assert.Nil(t, row.errorCode)
	require.NotNil(t, row.errorMessage)
	assert.Equal(t, "connection refused", *row.errorMessage)
	assert.Nil(t, row.payload)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medaudio/internal/models"
)

var audioRowColumns = []string{"id", "title", "subject", "category_id", "subcategory_id", "created_at", "updated_at"}

func newAudioMock(t *testing.T) (pgxmock.PgxPoolIface, *AudioStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, NewAudioStore(mock)
}

func TestAudioStoreList(t *testing.T) {
	mock, s := newAudioMock(t)
	now := time.Now()
	var none *string

	mock.ExpectQuery(q("FROM audios ORDER BY created_at DESC")).
		WithArgs(50, 100).
		WillReturnRows(pgxmock.NewRows(audioRowColumns).
			AddRow("a1", "房颤讲座", "心血管", strPtr("cardio"), none, now, now).
			AddRow("a2", "旧录音", "心内科", none, none, now, now))

	items, err := s.List(context.Background(), 50, 100)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].HasRelationalFields())
	assert.True(t, items[1].IsLegacyOnly())
}

func TestAudioStoreFindByIDNotFound(t *testing.T) {
	mock, s := newAudioMock(t)
	mock.ExpectQuery(q("FROM audios WHERE id = $1")).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(audioRowColumns))

	a, err := s.FindByID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestAudioStoreFindByIDs(t *testing.T) {
	mock, s := newAudioMock(t)
	now := time.Now()
	var none *string

	mock.ExpectQuery(q("WHERE id = ANY($1)")).
		WithArgs([]string{"a1", "a2"}).
		WillReturnRows(pgxmock.NewRows(audioRowColumns).
			AddRow("a1", "t", "s", none, none, now, now))

	items, err := s.FindByIDs(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAudioStoreFindByIDsEmpty(t *testing.T) {
	_, s := newAudioMock(t)
	items, err := s.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAudioStoreUpdateCategoryFields(t *testing.T) {
	mock, s := newAudioMock(t)
	a := &models.Audio{ID: "a1", Subject: "脑卒中", CategoryID: strPtr("neuro"), SubcategoryID: strPtr("stroke")}

	mock.ExpectExec(q("UPDATE audios SET subject = $2")).
		WithArgs("a1", "脑卒中", strPtr("neuro"), strPtr("stroke")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.UpdateCategoryFields(context.Background(), a))

	mock.ExpectExec(q("UPDATE audios SET subject = $2")).
		WithArgs("a1", "脑卒中", strPtr("neuro"), strPtr("stroke")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, s.UpdateCategoryFields(context.Background(), a), ErrNotFound)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

func TestProductsView_LoadPages(t *testing.T) {
	admin := newMockAdmin()
	v := NewProductsView(admin, nil)
	ctx := context.Background()

	require.NoError(t, v.Load(ctx, domain.ListQuery{Page: 0, Search: "", Status: "shipped"}))
	page := v.Page()
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Products, 2)
	assert.Empty(t, admin.productQueries[0].Status, "the product list has no status filter")

	require.NoError(t, v.Load(ctx, domain.ListQuery{Page: 1, Search: "coaster"}))
	require.Len(t, v.Page().Products, 1)
	assert.Equal(t, "p3", v.Page().Products[0].ID)
	assert.Equal(t, "coaster", v.Query().Search)
}

func TestProductsView_LoadFailure(t *testing.T) {
	admin := newMockAdmin()
	admin.failList = errDown
	notify := &mockNotifier{}
	v := NewProductsView(admin, notify)

	err := v.Load(context.Background(), domain.ListQuery{Page: 1})
	assert.True(t, errors.Is(err, errDown))
	assert.Equal(t, "Failed to fetch products", notify.lastError())
}

func TestProductsView_Delete(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		id        string
		failWith  error
		wantErr   error
		wantPage  int
		wantNote  string
		deleted   []string
		remaining int
	}{
		{
			name: "reloads the same page", page: 1, id: "p1",
			wantPage: 1, wantNote: "Product deleted successfully", deleted: []string{"p1"}, remaining: 2,
		},
		{
			name: "last product on a page steps back", page: 2, id: "p3",
			wantPage: 1, wantNote: "Product deleted successfully", deleted: []string{"p3"}, remaining: 2,
		},
		{
			name: "not on the loaded page", page: 1, id: "p3",
			wantErr: ErrNotLoaded, wantPage: 1,
		},
		{
			name: "backend refuses", page: 1, id: "p2", failWith: &serverErr{"Product has open orders"},
			wantPage: 1, wantNote: "Product has open orders",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := newMockAdmin()
			admin.failDelete = tt.failWith
			notify := &mockNotifier{}
			v := NewProductsView(admin, notify)
			ctx := context.Background()
			require.NoError(t, v.Load(ctx, domain.ListQuery{Page: tt.page}))

			err := v.Delete(ctx, tt.id)
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr))
			case tt.failWith != nil:
				require.Error(t, err)
				assert.Equal(t, tt.wantNote, notify.lastError())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantNote, notify.lastSuccess())
				assert.Equal(t, tt.remaining, v.Page().Total)
			}
			assert.Equal(t, tt.deleted, admin.deleted)
			assert.Equal(t, tt.wantPage, v.Query().Page)
		})
	}
}

package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostIsVisible(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	published := &Category{IsPublished: true}
	hidden := &Category{IsPublished: false}

	tests := []struct {
		name string
		post Post
		want bool
	}{
		{"published past no category", Post{IsPublished: true, PubDate: now.Add(-time.Hour)}, true},
		{"published exactly now", Post{IsPublished: true, PubDate: now}, true},
		{"published past published category", Post{IsPublished: true, PubDate: now.Add(-time.Hour), Category: published}, true},
		{"unpublished", Post{IsPublished: false, PubDate: now.Add(-time.Hour)}, false},
		{"scheduled", Post{IsPublished: true, PubDate: now.Add(time.Minute)}, false},
		{"hidden category", Post{IsPublished: true, PubDate: now.Add(-time.Hour), Category: hidden}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.post.IsVisible(now))
		})
	}
}

func TestVisibleScopeAgreesWithIsVisible(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	author := createUser(t, db, "author")
	openCat := createCategory(t, db, "Open", true)
	closedCat := createCategory(t, db, "Closed", false)

	categories := []*Category{nil, openCat, closedCat}
	dates := []time.Time{now.Add(-48 * time.Hour), now.Add(48 * time.Hour)}

	var all []*Post
	for _, category := range categories {
		for _, pubDate := range dates {
			for _, published := range []bool{true, false} {
				post := createPost(t, db, author, fmt.Sprintf("post-%d", len(all)), pubDate, func(p *Post) {
					p.IsPublished = published
					if category != nil {
						p.CategoryID = &category.ID
						p.Category = category
					}
				})
				all = append(all, post)
			}
		}
	}

	page, err := ListPosts(db, PostFilter{Now: now}, "")
	require.NoError(t, err)

	got := map[uint]bool{}
	for _, p := range page.Items {
		got[p.ID] = true
	}
	for _, p := range all {
		assert.Equal(t, p.IsVisible(now), got[p.ID], "post %q", p.Title)
	}
	assert.Len(t, page.Items, 2)
}

func TestListPostsOrderingAndCommentCount(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")

	oldest := createPost(t, db, author, "oldest", now.Add(-3*time.Hour))
	newest := createPost(t, db, author, "newest", now.Add(-1*time.Hour))
	middle := createPost(t, db, author, "middle", now.Add(-2*time.Hour))

	createComment(t, db, middle, reader, "first")
	createComment(t, db, middle, author, "second")
	createComment(t, db, newest, reader, "only")

	page, err := ListPosts(db, PostFilter{Now: now}, "1")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	assert.Equal(t, newest.ID, page.Items[0].ID)
	assert.Equal(t, middle.ID, page.Items[1].ID)
	assert.Equal(t, oldest.ID, page.Items[2].ID)

	assert.EqualValues(t, 1, page.Items[0].CommentCount)
	assert.EqualValues(t, 2, page.Items[1].CommentCount)
	assert.EqualValues(t, 0, page.Items[2].CommentCount)
	assert.Equal(t, "author", page.Items[0].Author.Username)
}

func TestListPostsPagination(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	author := createUser(t, db, "author")
	for i := 0; i < 23; i++ {
		createPost(t, db, author, fmt.Sprintf("post %02d", i), now.Add(-time.Duration(i+1)*time.Minute))
	}

	tests := []struct {
		param      string
		wantNumber int
		wantItems  int
	}{
		{"", 1, 10},
		{"1", 1, 10},
		{"2", 2, 10},
		{"3", 3, 3},
		{"4", 3, 3},
		{"999", 3, 3},
		{"0", 3, 3},
		{"-1", 3, 3},
		{"last", 3, 3},
		{"abc", 1, 10},
	}
	for _, tt := range tests {
		t.Run("page="+tt.param, func(t *testing.T) {
			page, err := ListPosts(db, PostFilter{Now: now}, tt.param)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, 3, page.NumPages)
			assert.EqualValues(t, 23, page.Total)
			assert.Len(t, page.Items, tt.wantItems)
		})
	}

	first, err := ListPosts(db, PostFilter{Now: now}, "1")
	require.NoError(t, err)
	second, err := ListPosts(db, PostFilter{Now: now}, "2")
	require.NoError(t, err)
	assert.Equal(t, "post 00", first.Items[0].Title)
	assert.Equal(t, "post 10", second.Items[0].Title)
}

func TestListPostsEmpty(t *testing.T) {
	db := newTestDB(t)

	page, err := ListPosts(db, PostFilter{Now: time.Now().UTC()}, "5")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext())
	assert.False(t, page.HasPrevious())
}

func TestListPostsByAuthorAndCategory(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	travel := createCategory(t, db, "Travel", true)

	inTravel := createPost(t, db, alice, "alice travel", now.Add(-time.Hour), func(p *Post) { p.CategoryID = &travel.ID })
	createPost(t, db, alice, "alice misc", now.Add(-time.Hour))
	createPost(t, db, bob, "bob travel", now.Add(-time.Hour), func(p *Post) { p.CategoryID = &travel.ID })
	draft := createPost(t, db, alice, "alice draft", now.Add(-time.Hour), func(p *Post) { p.IsPublished = false })
	scheduled := createPost(t, db, alice, "alice scheduled", now.Add(24*time.Hour))

	page, err := ListPosts(db, PostFilter{Now: now, CategoryID: travel.ID}, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = ListPosts(db, PostFilter{Now: now, AuthorID: alice.ID}, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = ListPosts(db, PostFilter{Now: now, AuthorID: alice.ID, CategoryID: travel.ID}, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, inTravel.ID, page.Items[0].ID)

	page, err = ListPosts(db, PostFilter{Now: now, AuthorID: alice.ID, IncludeHidden: true}, "")
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Equal(t, scheduled.ID, page.Items[0].ID)

	ids := []uint{}
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, draft.ID)
}

func TestGetPost(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	category := createCategory(t, db, "Food", true)
	location := &Location{Name: "Kazan", IsPublished: true}
	require.NoError(t, CreateLocation(db, location))

	post := createPost(t, db, author, "dinner", time.Now().UTC(), func(p *Post) {
		p.CategoryID = &category.ID
		p.LocationID = &location.ID
	})
	createComment(t, db, post, author, "tasty")

	got, err := GetPost(db, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "dinner", got.Title)
	assert.Equal(t, "author", got.Author.Username)
	require.NotNil(t, got.Category)
	assert.Equal(t, "food", got.Category.Slug)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Kazan", got.Location.Name)
	assert.EqualValues(t, 1, got.CommentCount)

	_, err = GetPost(db, post.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePostIgnoresLoadedAssociations(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	food := createCategory(t, db, "Food", true)
	post := createPost(t, db, author, "dinner", time.Now().UTC(), func(p *Post) { p.CategoryID = &food.ID })

	loaded, err := GetPost(db, post.ID)
	require.NoError(t, err)

	loaded.Title = "supper"
	loaded.CategoryID = nil
	loaded.IsPublished = false
	require.NoError(t, UpdatePost(db, loaded))

	got, err := GetPost(db, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "supper", got.Title)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)
	assert.False(t, got.IsPublished)
}

func TestDeletePostRemovesComments(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	post := createPost(t, db, author, "doomed", time.Now().UTC())
	other := createPost(t, db, author, "survivor", time.Now().UTC())
	c1 := createComment(t, db, post, author, "one")
	createComment(t, db, post, author, "two")
	createComment(t, db, other, author, "stays")

	require.NoError(t, DeletePost(db, post))

	_, err := GetPost(db, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetComment(db, post.ID, c1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := CountComments(db, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = CountComments(db, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestForeignKeyCascades(t *testing.T) {
	db := newTestDB(t)
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	category := createCategory(t, db, "Temp", true)
	location := &Location{Name: "Nowhere", IsPublished: true}
	require.NoError(t, CreateLocation(db, location))

	post := createPost(t, db, author, "post", time.Now().UTC(), func(p *Post) {
		p.CategoryID = &category.ID
		p.LocationID = &location.ID
	})
	createComment(t, db, post, reader, "hello")

	require.NoError(t, db.Delete(&Category{}, category.ID).Error)
	require.NoError(t, db.Delete(&Location{}, location.ID).Error)

	got, err := GetPost(db, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.LocationID)

	require.NoError(t, db.Delete(&User{}, reader.ID).Error)
	n, err := CountComments(db, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "comments go away with their author")

	createComment(t, db, post, author, "mine")
	require.NoError(t, db.Delete(&Post{}, post.ID).Error)
	n, err = CountComments(db, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "comments go away with their post")
}

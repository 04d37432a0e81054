package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		img.Set(x, 100, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newMediaFixture(t *testing.T) (*fixture, MediaService, *storage.MemoryStore) {
	f := newFixture(t)
	store := storage.NewMemoryStore()
	return f, NewMediaService(repository.NewMediaRepo(f.db), store), store
}

func TestFolderTreeAndMoves(t *testing.T) {
	f, media, _ := newMediaFixture(t)
	_, owner := f.user("owner")
	_, other := f.user("other")

	root, err := media.CreateFolder(owner, &FolderRequest{Name: "Products"})
	require.NoError(t, err)
	child, err := media.CreateFolder(owner, &FolderRequest{Name: "Shoes", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := media.CreateFolder(owner, &FolderRequest{Name: "Sneakers", ParentID: &child.ID})
	require.NoError(t, err)

	tree, err := media.Tree(owner, root.ID)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	assert.Equal(t, root.ID, tree[0].ID)
	assert.Equal(t, 2, tree[2].Depth)

	crumbs, err := media.Breadcrumb(owner, grandchild.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 3)
	assert.Equal(t, "Products", crumbs[0].Name)
	assert.Equal(t, "Sneakers", crumbs[2].Name)

	_, err = media.UpdateFolder(owner, root.ID, &UpdateFolderRequest{ParentID: &grandchild.ID})
	assert.ErrorIs(t, err, ErrFolderIntoSelf)
	_, err = media.UpdateFolder(owner, root.ID, &UpdateFolderRequest{ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrFolderIntoSelf)

	moved, err := media.UpdateFolder(owner, grandchild.ID, &UpdateFolderRequest{MoveToRoot: true})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)

	top, err := media.ListFolders(owner, nil)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	_, err = media.Tree(other, root.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)
	_, err = media.CreateFolder(other, &FolderRequest{Name: "Sneaky", ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestUploadImageStoresThumbnail(t *testing.T) {
	f, media, store := newMediaFixture(t)
	_, owner := f.user("owner")
	ctx := context.Background()
	data := pngBytes(t)

	file, err := media.UploadFile(ctx, owner, &Upload{
		Name: "Banner.PNG", Size: int64(len(data)), Body: bytes.NewReader(data),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", file.MimeType)
	assert.True(t, strings.HasSuffix(file.ObjectKey, ".png"))
	assert.NotEmpty(t, file.ThumbnailKey)
	assert.True(t, store.Has(file.ObjectKey))
	assert.True(t, store.Has(file.ThumbnailKey))

	doc, err := media.UploadFile(ctx, owner, &Upload{
		Name: "notes.txt", ContentType: "text/plain", Size: 5, Body: strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Empty(t, doc.ThumbnailKey)

	files, err := media.ListFiles(owner, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestUploadRejectsEmptyAndOversizedFiles(t *testing.T) {
	f, media, _ := newMediaFixture(t)
	_, owner := f.user("owner")
	ctx := context.Background()

	_, err := media.UploadFile(ctx, owner, &Upload{Name: "empty.txt", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = media.UploadFile(ctx, owner, &Upload{
		Name: "huge.bin", Size: MaxUploadSize + 1, Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// The declared size can lie; the body is still capped.
	big := bytes.Repeat([]byte("a"), MaxUploadSize+1)
	_, err = media.UploadFile(ctx, owner, &Upload{Name: "liar.bin", Size: 10, Body: bytes.NewReader(big)})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	missing := uuid.New()
	_, err = media.UploadFile(ctx, owner, &Upload{FolderID: &missing, Name: "a.txt", Body: strings.NewReader("a")})
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestDeleteFolderRemovesSubtreeObjects(t *testing.T) {
	f, media, store := newMediaFixture(t)
	_, owner := f.user("owner")
	_, other := f.user("other")
	ctx := context.Background()

	root, err := media.CreateFolder(owner, &FolderRequest{Name: "Archive"})
	require.NoError(t, err)
	child, err := media.CreateFolder(owner, &FolderRequest{Name: "2024", ParentID: &root.ID})
	require.NoError(t, err)

	data := pngBytes(t)
	nested, err := media.UploadFile(ctx, owner, &Upload{
		FolderID: &child.ID, Name: "old.png", Size: int64(len(data)), Body: bytes.NewReader(data),
	})
	require.NoError(t, err)
	loose, err := media.UploadFile(ctx, owner, &Upload{Name: "keep.txt", Body: strings.NewReader("keep")})
	require.NoError(t, err)

	assert.ErrorIs(t, media.DeleteFolder(ctx, other, root.ID), ErrFolderNotFound)
	assert.ErrorIs(t, media.DeleteFile(ctx, other, loose.ID), ErrFileNotFound)

	require.NoError(t, media.DeleteFolder(ctx, owner, root.ID))
	assert.False(t, store.Has(nested.ObjectKey))
	assert.False(t, store.Has(nested.ThumbnailKey))
	assert.True(t, store.Has(loose.ObjectKey))

	_, err = media.ListFolders(owner, &child.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)

	require.NoError(t, media.DeleteFile(ctx, owner, loose.ID))
	assert.False(t, store.Has(loose.ObjectKey))
}

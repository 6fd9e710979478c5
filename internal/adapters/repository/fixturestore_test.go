package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/shelf/internal/domain/book"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFixtureStore_Seed(t *testing.T) {
	Convey("Given a fixture store built from the default seed", t, func() {
		ctx := context.Background()
		store, err := NewFixtureStore(ctx)
		So(err, ShouldBeNil)

		Convey("Then it should hold the seeded books", func() {
			So(store.Count(ctx), ShouldEqual, 2)
		})

		Convey("When looking up a seeded ISBN", func() {
			b, err := store.Get(ctx, "9780345391803")

			Convey("Then the record should be returned", func() {
				So(err, ShouldBeNil)
				So(b.Title, ShouldEqual, "The Hitchhiker's Guide to the Galaxy")
				So(b.Author, ShouldEqual, "Douglas Adams")
			})
		})

		Convey("When looking up an unknown ISBN", func() {
			_, err := store.Get(ctx, "0000000000000")

			Convey("Then ErrNotFound should be returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the lookup differs only by whitespace", func() {
			_, err := store.Get(ctx, " 9780345391803")

			Convey("Then it should not match", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When counting", func() {
			Convey("Then both seeded books should be present", func() {
				So(store.Count(ctx), ShouldEqual, 2)
			})
		})
	})
}

func TestFixtureStore_Validation(t *testing.T) {
	Convey("Given custom records", t, func() {
		ctx := context.Background()

		Convey("When an ISBN is duplicated", func() {
			_, err := NewFixtureStore(ctx, WithBooks(
				book.Book{ISBN: "1", Title: "a"},
				book.Book{ISBN: "1", Title: "b"},
			))

			Convey("Then construction should fail", func() {
				So(errors.Is(err, ErrDuplicateISBN), ShouldBeTrue)
			})
		})

		Convey("When an ISBN is empty", func() {
			_, err := NewFixtureStore(ctx, WithBooks(book.Book{Title: "untitled"}))

			Convey("Then construction should fail", func() {
				So(errors.Is(err, ErrEmptyISBN), ShouldBeTrue)
			})
		})

		Convey("When no records are given", func() {
			store, err := NewFixtureStore(ctx, WithBooks())

			Convey("Then the store should be empty", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 0)
				_, getErr := store.Get(ctx, "9780345391803")
				So(errors.Is(getErr, ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestFixtureStore_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	store, err := NewFixtureStore(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := store.Get(ctx, "9780061120084"); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				_ = store.Count(ctx)
			}
		}()
	}
	wg.Wait()
}

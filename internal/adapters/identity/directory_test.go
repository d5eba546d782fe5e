package identity_test

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/platefinder/internal/adapters/identity"
	"github.com/okian/platefinder/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestDirectory(t *testing.T) {
	_ = logger.Init()

	Convey("Given a directory provisioned with two users", t, func() {
		ctx := context.Background()
		d := identity.NewDirectory(identity.WithCost(bcrypt.MinCost))
		created := d.Provision(ctx, []identity.User{
			{Username: "alice", Password: "s3cret", Roles: []string{"RestaurantCreator"}},
			{Username: "bob", Password: "hunter2", Roles: []string{"RequestViewer"}},
			{Username: "", Password: "x"},
			{Username: "alice", Password: "again"},
		})

		Convey("Then invalid and duplicate users are skipped", func() {
			So(created, ShouldResemble, []string{"alice", "bob"})
			So(d.Len(), ShouldEqual, 2)
		})

		Convey("When checking a correct credential with an allowed role", func() {
			ok := d.IsAuthorized(ctx, identity.Credential{Username: "alice", Password: "s3cret"}, "RestaurantCreator")

			Convey("Then access is granted", func() {
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the role is not allowed", func() {
			ok := d.IsAuthorized(ctx, identity.Credential{Username: "bob", Password: "hunter2"}, "RestaurantCreator")

			Convey("Then access is denied", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When any of several roles is accepted", func() {
			ok := d.IsAuthorized(ctx, identity.Credential{Username: "bob", Password: "hunter2"}, "RestaurantCreator", "RequestViewer")

			Convey("Then access is granted", func() {
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the password is wrong or the user unknown", func() {
			So(d.IsAuthorized(ctx, identity.Credential{Username: "alice", Password: "nope"}, "RestaurantCreator"), ShouldBeFalse)
			So(d.IsAuthorized(ctx, identity.Credential{Username: "carol", Password: "s3cret"}, "RestaurantCreator"), ShouldBeFalse)
		})

		Convey("When adding a duplicate directly", func() {
			err := d.Add(identity.User{Username: "bob", Password: "p"})

			Convey("Then ErrUserExists is returned", func() {
				So(errors.Is(err, identity.ErrUserExists), ShouldBeTrue)
			})
		})
	})
}

func TestParseBasic(t *testing.T) {
	Convey("Given Authorization header values", t, func() {
		Convey("A well-formed header decodes", func() {
			cred, err := identity.ParseBasic(basic("alice", "pa:ss"))
			So(err, ShouldBeNil)
			So(cred, ShouldResemble, identity.Credential{Username: "alice", Password: "pa:ss"})
		})

		Convey("The scheme is case-insensitive", func() {
			_, err := identity.ParseBasic("basic " + base64.StdEncoding.EncodeToString([]byte("a:b")))
			So(err, ShouldBeNil)
		})

		Convey("Other schemes, bad base64 and missing colons are rejected", func() {
			for _, h := range []string{"", "Bearer abc", "Basic !!!", "Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon"))} {
				_, err := identity.ParseBasic(h)
				So(errors.Is(err, identity.ErrMalformedCredential), ShouldBeTrue)
			}
		})
	})
}

func TestLoadUsers(t *testing.T) {
	Convey("Given a users file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "users.yaml")
		content := `
- username: alice
  displayName: Alice
  password: s3cret
  roles: [RestaurantCreator, RequestViewer]
- username: bob
  password: hunter2
  roles: [RequestViewer]
`
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			users, err := identity.LoadUsers(path)

			Convey("Then every user and role is read", func() {
				So(err, ShouldBeNil)
				So(users, ShouldHaveLength, 2)
				So(users[0].DisplayName, ShouldEqual, "Alice")
				So(users[0].Roles, ShouldResemble, []string{"RestaurantCreator", "RequestViewer"})
				So(users[1].Username, ShouldEqual, "bob")
			})
		})

		Convey("When the file is missing or malformed", func() {
			_, err := identity.LoadUsers(filepath.Join(dir, "missing.yaml"))
			So(err, ShouldNotBeNil)

			bad := filepath.Join(dir, "bad.yaml")
			So(os.WriteFile(bad, []byte("username: [unclosed"), 0o600), ShouldBeNil)
			_, err = identity.LoadUsers(bad)
			So(err, ShouldNotBeNil)
		})
	})
}

package cookiejwt_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrEthical07/cookiejwt"
)

// ExampleNew builds a signed-cookie storage and round-trips a session.
func ExampleNew() {
	storage, err := cookiejwt.New().
		WithCookie(cookiejwt.CookieConfig{
			Name:     "__session",
			Path:     "/",
			HTTPOnly: true,
			Secrets:  []string{"s3cr3t"},
		}).
		WithSigning(true).
		Build()
	if err != nil {
		panic(err)
	}
	defer storage.Close()

	ctx := context.Background()
	setCookie, _ := storage.CommitSession(ctx, cookiejwt.NewSession(cookiejwt.Data{"uid": 42}, ""))

	// The browser sends back only name=value.
	header := strings.SplitN(setCookie, ";", 2)[0]
	sess, _ := storage.GetSession(ctx, header)
	uid, _ := sess.Get("uid")
	fmt.Println(uid)
	// Output: 42
}

// ExampleJWTCookieStorage_DestroySession clears the cookie on logout.
func ExampleJWTCookieStorage_DestroySession() {
	storage, _ := cookiejwt.New().
		WithCookie(cookiejwt.CookieConfig{Name: "__session", Path: "/"}).
		Build()
	defer storage.Close()

	setCookie, _ := storage.DestroySession(context.Background(), nil)
	fmt.Println(setCookie)
	// Output: __session=; Path=/; Expires=Thu, 01 Jan 1970 00:00:00 GMT
}

// ExampleSession_Flash shows a value that survives exactly one read.
func ExampleSession_Flash() {
	sess := cookiejwt.NewSession(nil, "")
	sess.Flash("notice", "saved")

	first, _ := sess.Get("notice")
	_, again := sess.Get("notice")
	fmt.Println(first, again)
	// Output: saved false
}

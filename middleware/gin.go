package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MrEthical07/cookiejwt"
)

// GinSessionKey is the gin context key holding the loaded *cookiejwt.Session.
const GinSessionKey = "cookiejwt.session"

// GinSession is the gin counterpart of [Session].
func GinSession(storage cookiejwt.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storage == nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		sess, err := storage.GetSession(requestContext(c.Request), c.GetHeader("Cookie"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(GinSessionKey, sess)
		c.Next()
	}
}

func GinSessionFrom(c *gin.Context) (*cookiejwt.Session, bool) {
	v, ok := c.Get(GinSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*cookiejwt.Session)
	return sess, ok && sess != nil
}

// GinCommit appends a Set-Cookie header persisting the gin context session.
func GinCommit(c *gin.Context, storage cookiejwt.Storage, opts ...cookiejwt.CookieOption) error {
	sess, ok := GinSessionFrom(c)
	if !ok {
		return ErrNoSession
	}
	value, err := storage.CommitSession(requestContext(c.Request), sess, opts...)
	if err != nil {
		return err
	}
	c.Writer.Header().Add("Set-Cookie", value)
	return nil
}

// GinDestroy appends a Set-Cookie header clearing the session cookie.
func GinDestroy(c *gin.Context, storage cookiejwt.Storage, opts ...cookiejwt.CookieOption) error {
	sess, _ := GinSessionFrom(c)
	value, err := storage.DestroySession(requestContext(c.Request), sess, opts...)
	if err != nil {
		return err
	}
	c.Writer.Header().Add("Set-Cookie", value)
	return nil
}

package auth

import "time"

func (c *CachingAuthenticator) SetClock(now func() time.Time) {
	c.now = now
}

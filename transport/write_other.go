//go:build !unix

package transport

func (c *client) writeNonBlocking(b []byte) (int, error) {
	return c.writeWithDeadline(b)
}

func (c *client) awaitWritable() error {
	return nil
}

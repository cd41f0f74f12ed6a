package command

import "github.com/difegue/mpcnet/internal/protocol"

// Ping does nothing but round trip.
func Ping() Descriptor[struct{}] {
	return New("ping", Ack)
}

// Password authenticates the connection.
func Password(password string) Descriptor[struct{}] {
	return New("password", Ack, protocol.Quote(password))
}

// TagTypes returns the tag types the daemon reports.
func TagTypes() Descriptor[[]string] {
	return New("tagtypes", Values("tagtype"))
}

// Commands returns the commands the current client may use.
func Commands() Descriptor[[]string] {
	return New("commands", Values("command"))
}

package amqp

// Channel and Dialer expose the injection points to tests
type Channel = channel
type Dialer = dialer

var WithDialer = withDialer

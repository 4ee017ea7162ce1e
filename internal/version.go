package internal

// Version is the current ankitts release
const Version = "0.1.0"

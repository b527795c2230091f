package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes a commented starter config to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `# LR5-LAN endpoint
host = "192.168.10.1"
port = 10000

connect_timeout = "5s"
read_timeout = "5s"
write_timeout = "5s"

# Byte order of the payload length field. Some firmware revisions expect
# "little"; the product id is always big-endian.
length_byte_order = "big"

[monitor]
interval = "1s"
# metrics_addr = "127.0.0.1:9464"

[monitor.backoff]
initial_delay = "250ms"
multiplier = 2.0
max_delay = "10s"
jitter = true
`

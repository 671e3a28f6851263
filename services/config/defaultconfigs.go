package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (the -device flag, or "device" in the config file)
// Val: YAML document for that device; a config file overlays it
// -----------------------------------------------------------------------------

const cfgZ1 = `
device: z1
hal:
  platform: linux
  buses:
    - id: i2c0
      name: /dev/i2c-1
  devices:
    - id: temp0
      type: tmp102
      bus: i2c0
      address: 0x48
    - id: accel0
      type: adxl345
      bus: i2c0
      address: 0x53
    - id: rgb0
      type: leds
      pins:
        red: GPIO17
        green: GPIO27
        blue: GPIO22
rest:
  chunk_size: 64
http:
  addr: ":5683"
  timeouts:
    read: 5
    write: 5
    idle: 60
mqtt:
  enabled: false
  broker:
    url: tcp://localhost:1883
  prefix: devrest/z1
  encoding: text
  qos: 0
  reconnect:
    initial_delay_ms: 500
    max_delay_s: 30
telemetry:
  interval_ms: 5000
  paths: [tmp, acc, acctmp]
logging:
  level: info
  format: json
  output: stdout
`

const cfgSim = `
device: sim
hal:
  platform: sim
  buses:
    - id: i2c0
  devices:
    - id: temp0
      type: tmp102
      bus: i2c0
    - id: accel0
      type: adxl345
      bus: i2c0
    - id: rgb0
      type: leds
      pins:
        red: LED_R
        green: LED_G
        blue: LED_B
  sim:
    temperature_raw: 0x1A20
    axes: [12, -7, 256]
rest:
  chunk_size: 64
http:
  addr: "127.0.0.1:8080"
mqtt:
  enabled: false
  prefix: devrest/sim
  encoding: text
telemetry:
  interval_ms: 2000
logging:
  level: debug
  format: text
  output: stderr
`

var embeddedConfigs = map[string][]byte{
	"z1":  []byte(cfgZ1),
	"sim": []byte(cfgSim),
}

package airqd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Debug  bool     `yaml:"debug"`
	Period Duration `yaml:"period"`
	Serial Serial   `yaml:"serial"`
	LED    LED      `yaml:"led"`
	Levels []*Level `yaml:"levels"`
}

type Serial struct {
	Port     string `yaml:"port"` // Empty means auto-detect
	BaudRate int    `yaml:"baud_rate"`
}

type LED struct {
	Chip      int   `yaml:"chip"`
	Channels  []int `yaml:"channels"` // Red, green, blue
	Frequency int   `yaml:"frequency"`
}

// A Level is the LED rendering used for PM2.5 concentrations lower than Below.
// The last level may omit Below to catch everything above the previous ones.
type Level struct {
	Below     *uint32    `yaml:"below"`
	ColorName string     `yaml:"color"`
	Blink     Duration   `yaml:"blink"`
	Command   LEDCommand `yaml:"-"`
}

func Load(path string) (Config, error) {
	var c Config

	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	codec := yaml.NewDecoder(f)
	err = codec.Decode(&c)
	if err != nil {
		return c, err
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	if c.Period.Duration < 0 {
		return fmt.Errorf("period: negative value %s", c.Period)
	}

	if c.Serial.BaudRate < 0 {
		return fmt.Errorf("serial: invalid baud_rate %d", c.Serial.BaudRate)
	}

	//

	if len(c.LED.Channels) == 0 {
		c.LED.Channels = []int{0, 1, 2}
	}
	if len(c.LED.Channels) != 3 {
		return fmt.Errorf("led: %d channels provided, expected 3 (red, green, blue)", len(c.LED.Channels))
	}
	if c.LED.Frequency == 0 {
		c.LED.Frequency = 5000
	}
	if c.LED.Frequency < 0 {
		return fmt.Errorf("led: invalid frequency %d", c.LED.Frequency)
	}

	//

	if len(c.Levels) == 0 {
		return fmt.Errorf("levels: no level provided")
	}

	var prev uint32
	for i, level := range c.Levels {
		name := fmt.Sprintf("levels[%d]", i)
		if level == nil {
			return fmt.Errorf("%s: empty level", name)
		}

		color, err := ParseColor(level.ColorName)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		if level.Blink.Duration < 0 {
			return fmt.Errorf("%s: negative blink %s", name, level.Blink)
		}
		level.Command = Continuous(color)
		if level.Blink.Duration > 0 {
			level.Command = Blinking(color, level.Blink.Duration)
		}
		if color == ColorOff {
			level.Command = Off()
		}

		if level.Below == nil {
			if i != len(c.Levels)-1 {
				return fmt.Errorf("%s: only the last level can omit below", name)
			}
			continue
		}

		if i > 0 && *level.Below <= prev {
			return fmt.Errorf("%s: below %d must be greater than previous one", name, *level.Below)
		}
		prev = *level.Below
	}

	return nil
}

//
//
//

type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var str string
	err := json.Unmarshal(data, &str)
	if err != nil {
		return err
	}

	d.Duration, err = time.ParseDuration(str)
	return err
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	err := value.Decode(&str)
	if err != nil {
		return err
	}

	if str == "" {
		return nil
	}

	d.Duration, err = time.ParseDuration(str)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

package gpio

// Pin binds a single output pin of a Driver to the two-method interface the
// chip drivers expect. The pin is configured as output by NewOutputPin.
type Pin struct {
	driver Driver
	pin    int
}

// NewOutputPin configures the given pin as output and returns it as a Pin.
func NewOutputPin(driver Driver, pin int) (*Pin, error) {
	if err := driver.SetupPin(pin); err != nil {
		return nil, err
	}
	return &Pin{driver: driver, pin: pin}, nil
}

// Number returns the pin's GPIO number.
func (p *Pin) Number() int {
	return p.pin
}

func (p *Pin) SetHigh() error {
	return p.driver.WritePin(p.pin, High)
}

func (p *Pin) SetLow() error {
	return p.driver.WritePin(p.pin, Low)
}

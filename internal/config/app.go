package config

type AppConfig struct {
	DefaultCurrencyName string `yaml:"default-currency"`
}

func (s *AppConfig) DefaultCurrency() string {
	return s.DefaultCurrencyName
}

package config

import "os"

const (
	EnvLinkedInEmail    = "LINKEDIN_EMAIL"
	EnvLinkedInPassword = "LINKEDIN_PASSWORD"
	EnvEmailSender      = "EMAIL_SENDER"
	EnvEmailPassword    = "EMAIL_PASSWORD"
	EnvEmailReceiver    = "EMAIL_RECEIVER"
)

type Credentials struct {
	LinkedIn LinkedInCredentials
	Email    EmailCredentials
}

type LinkedInCredentials struct {
	Email    string
	Password string
}

type EmailCredentials struct {
	Sender   string
	Password string
	Receiver string
}

// LoadCredentials читает секреты из окружения. Пустые значения не отвергаются:
// отсутствие секрета проявится как ошибка входа или отправки.
func LoadCredentials() Credentials {
	return Credentials{
		LinkedIn: LinkedInCredentials{
			Email:    os.Getenv(EnvLinkedInEmail),
			Password: os.Getenv(EnvLinkedInPassword),
		},
		Email: EmailCredentials{
			Sender:   os.Getenv(EnvEmailSender),
			Password: os.Getenv(EnvEmailPassword),
			Receiver: os.Getenv(EnvEmailReceiver),
		},
	}
}

// Missing возвращает имена незаданных переменных, только для предупреждений.
func (c Credentials) Missing() []string {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	check(EnvLinkedInEmail, c.LinkedIn.Email)
	check(EnvLinkedInPassword, c.LinkedIn.Password)
	check(EnvEmailSender, c.Email.Sender)
	check(EnvEmailPassword, c.Email.Password)
	check(EnvEmailReceiver, c.Email.Receiver)
	return missing
}

package account

import "time"

// Account - учетная запись владельца хранилища.
// Пароль аккаунта и мастер-пароль независимы и хранятся только в виде хэшей.
type Account struct {
	ID         int
	Handle     string
	Contact    string
	SecretHash string
	MasterHash string
	KDFSalt    []byte // соль для вывода ключа шифрования на клиенте
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Profile - публичная часть аккаунта, безопасная для выдачи клиенту.
type Profile struct {
	ID        int       `json:"id"`
	Handle    string    `json:"handle"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a Account) Profile() Profile {
	return Profile{
		ID:        a.ID,
		Handle:    a.Handle,
		Contact:   a.Contact,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type RegisterRequest struct {
	Handle       string `json:"handle" doc:"Уникальное имя пользователя" minLength:"1"`
	Contact      string `json:"contact" doc:"Уникальный email" minLength:"1"`
	Secret       string `json:"secret" doc:"Пароль аккаунта" minLength:"1"`
	MasterSecret string `json:"master_secret" doc:"Мастер-пароль хранилища" minLength:"1"`
}

type LoginRequest struct {
	Identity string `json:"identity" doc:"Имя пользователя или email" minLength:"1"`
	Secret   string `json:"secret" doc:"Пароль аккаунта" minLength:"1"`
}

type ProfileUpdate struct {
	Handle  string `json:"handle" minLength:"1"`
	Contact string `json:"contact" minLength:"1"`
}

package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"Rossi", "Russo", "Ferrari", "Esposito", "Bianchi", "Romano", "Colombo",
	"Ricci", "Marino", "Greco", "Bruno", "Gallo", "Conti", "De Luca",
	"Mancini", "Costa", "Giordano", "Rizzo", "Lombardi", "Moretti",
}

var commonFirstNames = []string{
	"Alessandro", "Anna", "Bruno", "Chiara", "Davide", "Elena", "Fabio",
	"Giulia", "Lorenzo", "Maria", "Marco", "Paola", "Roberto", "Silvia",
	"Stefano", "Valentina", "Andrea", "Francesca", "Giorgio", "Laura",
}

func GenerateRandomFirstName() string {
	return commonFirstNames[rand.Intn(len(commonFirstNames))]
}

func GenerateRandomSurname() string {
	return commonSurnames[rand.Intn(len(commonSurnames))]
}

var consonants = "BCDFGHJKLMNPQRSTVWXYZ"
var digits = "0123456789"

// GenerateRandomTaxCode produces a 16-character identifier in the shape of an
// Italian codice fiscale. Only the shape is imitated; the check digit is not
// computed.
func GenerateRandomTaxCode() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteByte(consonants[rand.Intn(len(consonants))])
	}
	sb.WriteByte(digits[rand.Intn(len(digits))])
	sb.WriteByte(digits[rand.Intn(len(digits))])
	sb.WriteByte(consonants[rand.Intn(len(consonants))])
	sb.WriteByte(digits[rand.Intn(len(digits))])
	sb.WriteByte(digits[rand.Intn(len(digits))])
	sb.WriteByte(consonants[rand.Intn(len(consonants))])
	for i := 0; i < 3; i++ {
		sb.WriteByte(digits[rand.Intn(len(digits))])
	}
	sb.WriteByte(consonants[rand.Intn(len(consonants))])
	return sb.String()
}

func GenerateRandomTeacher(password string, emailDomainName string) (*domain.Teacher, error) {
	firstName := GenerateRandomFirstName()
	lastName := GenerateRandomSurname()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	local := strings.ToLower(strings.ReplaceAll(firstName+"."+lastName, " ", ""))

	teacher := &domain.Teacher{
		FirstName:    firstName,
		LastName:     lastName,
		TaxCode:      GenerateRandomTaxCode(),
		Email:        fmt.Sprintf("%s%d@%s", local, rand.Intn(100), emailDomainName),
		PasswordHash: string(passwordHash),
		Role:         domain.RoleTeacher,
	}

	return teacher, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

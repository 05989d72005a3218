package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Sentinel errors surfaced by the repositories. The service layer maps them
// to application error kinds; SQL details never cross that boundary.
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrThemeNotFound       = errors.New("theme not found")
	ErrTimeSlotNotFound    = errors.New("time slot not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrEmailExists         = errors.New("email already registered")
	ErrSlotTaken           = errors.New("slot already reserved")
)

// isDuplicate reports whether err is a MySQL duplicate-entry violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

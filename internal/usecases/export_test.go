package usecases

import "time"

func (u *OTPAuthUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *OTPAuthUsecase) SetOTPGenerator(gen func() (string, error)) { u.generateOTP = gen }

func (u *OTPAuthUsecase) SetSaltGenerator(gen func() (string, error)) { u.generateSalt = gen }

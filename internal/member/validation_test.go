package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsCompleteForm(t *testing.T) {
	v := NewValidator()

	form := validForm()
	form.Zipcode = "06236"
	form.StreetAddress = "서울 강남구 테헤란로 152"
	form.DetailedAddress = "12층"

	assert.False(t, v.Validate(form).HasErrors())
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		want   ValidationErrors
	}{
		{
			name:   "missing email",
			mutate: func(f *Form) { f.Email = "" },
			want:   ValidationErrors{{Field: "email", Message: MsgRequired}},
		},
		{
			name:   "malformed email",
			mutate: func(f *Form) { f.Email = "eater.tryeat.shop" },
			want:   ValidationErrors{{Field: "email", Message: MsgInvalidFormat}},
		},
		{
			name:   "short name",
			mutate: func(f *Form) { f.Name = "홍" },
			want:   ValidationErrors{{Field: "name", Message: MsgInvalidLength}},
		},
		{
			name: "short password",
			mutate: func(f *Form) {
				f.Password1 = "abc"
				f.Password2 = "abc"
			},
			want: ValidationErrors{{Field: "password1", Message: MsgInvalidLength}},
		},
		{
			name:   "bad phone number",
			mutate: func(f *Form) { f.PhoneNumber = "phone" },
			want:   ValidationErrors{{Field: "phoneNumber", Message: MsgInvalidFormat}},
		},
		{
			name:   "bad zipcode",
			mutate: func(f *Form) { f.Zipcode = "12ab5" },
			want:   ValidationErrors{{Field: "zipcode", Message: MsgInvalidFormat}},
		},
		{
			name:   "password mismatch",
			mutate: func(f *Form) { f.Password2 = "xyz987" },
			want:   ValidationErrors{{Field: "password2", Message: MsgPasswordMismatch}},
		},
		{
			name: "missing confirmation",
			mutate: func(f *Form) {
				f.Password2 = ""
			},
			want: ValidationErrors{
				{Field: "password2", Message: MsgRequired},
				{Field: "password2", Message: MsgPasswordMismatch},
			},
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			assert.Equal(t, tt.want, v.Validate(form))
		})
	}
}

func TestValidateKeepsDeclaredOrder(t *testing.T) {
	form := Form{Password1: "abc123", Password2: "abc124"}

	errs := NewValidator().Validate(form)

	assert.Equal(t, []string{"email", "name", "phoneNumber", "password2"}, fieldNames(errs))
	assert.Equal(t, MsgPasswordMismatch, errs[len(errs)-1].Message)
}

func TestValidationErrorsJoin(t *testing.T) {
	var errs ValidationErrors
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "", errs.Join("\n"))

	errs.Add("email", MsgInvalidFormat)
	errs.Add("password2", MsgPasswordMismatch)

	assert.True(t, errs.HasErrors())
	assert.Equal(t, MsgInvalidFormat+"\n"+MsgPasswordMismatch, errs.Join("\n"))
	assert.Equal(t, MsgInvalidFormat+MsgPasswordMismatch, errs.Join(""))
}

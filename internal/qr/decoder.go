// Package qr decodes the multi-part QR codes printed on Japanese
// vehicle inspection certificates (車検証).
//
// A certificate carries its data across several QR codes. The scanned
// payloads are concatenated in scan order and the combined string is
// split on "/" into 25 positional fields. Printers omit the trailing
// separator on the third code, so it is restored before joining.
package qr

import (
	"fmt"
	"strings"

	"github.com/stmiyata/seibi-backend/internal/app/model"
)

// FieldCount is the number of positional fields on a certificate
const FieldCount = 25

// PayloadCount is the number of QR codes that make up one certificate
const PayloadCount = 5

// Labels maps each positional field to its certificate schema name
var Labels = [FieldCount]string{
	"QRバージョン",
	"車体番号位置",
	"型式・類別",
	"電子車検証期限",
	"初年度登録年月",
	"型式",
	"軸重前前",
	"軸重前後",
	"軸重後前",
	"軸重後後",
	"騒音規制",
	"近接騒音規制",
	"駆動方式",
	"オパシメーター測定者",
	"NOxPM測定モード",
	"NOx値",
	"PM値",
	"保安基準適応年月日",
	"燃料の種類",
	"QRバージョン２",
	"自動車登録番号",
	"ナンバープレートサイズ",
	"車台番号",
	"原動機型式",
	"帳票種別",
}

// Field is one decoded certificate field
type Field struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Decode joins the scanned payloads and splits them into the 25
// certificate fields. Missing trailing values come back as "".
// Decode never fails; garbage in produces empty or shifted fields out.
func Decode(payloads []string) [FieldCount]string {
	fixed := make([]string, len(payloads))
	for i, p := range payloads {
		// 3つ目のQRは末尾の区切りが印字されない
		if i == 2 && !strings.HasSuffix(p, "/") {
			p = p + "/"
		}
		fixed[i] = p
	}

	values := strings.Split(strings.Join(fixed, ""), "/")

	var fields [FieldCount]string
	for i := 0; i < FieldCount; i++ {
		if i < len(values) {
			fields[i] = values[i]
		}
	}
	return fields
}

// DecodeFields returns the decoded values paired with their labels
func DecodeFields(payloads []string) []Field {
	values := Decode(payloads)
	fields := make([]Field, FieldCount)
	for i, v := range values {
		fields[i] = Field{Index: i, Label: Labels[i], Value: v}
	}
	return fields
}

// ApplyToVehicle copies the decoded fields onto a vehicle: the raw
// Parts columns plus the named columns the application searches on.
func ApplyToVehicle(v *model.Vehicle, fields [FieldCount]string) {
	parts := []*string{
		&v.Parts0, &v.Parts1, &v.Parts2, &v.Parts3, &v.Parts4,
		&v.Parts5, &v.Parts6, &v.Parts7, &v.Parts8, &v.Parts9,
		&v.Parts10, &v.Parts11, &v.Parts12, &v.Parts13, &v.Parts14,
		&v.Parts15, &v.Parts16, &v.Parts17, &v.Parts18, &v.Parts19,
		&v.Parts20, &v.Parts21, &v.Parts22, &v.Parts23, &v.Parts24,
	}
	for i, p := range parts {
		*p = fields[i]
	}

	v.FirstRegistrationDate = formatFirstRegistration(fields[4])
	v.TypeNumber = fields[5]
	v.LicensePlate = fields[20]
	v.FrameNumber = fields[22]
	v.EngineType = fields[23]
}

// formatFirstRegistration converts the certificate's YYMM value to a
// YYYY-MM-01 date string. Values too short to parse come back as "".
func formatFirstRegistration(ym string) string {
	if len(ym) < 4 {
		return ""
	}
	return fmt.Sprintf("20%s-%s-01", ym[0:2], ym[2:4])
}

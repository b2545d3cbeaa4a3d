package directory

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/promptmyrep/civic/cmd/api/models"
)

// normalizeCongressMember maps a federal member list entry, plus its optional
// detail record, to a representative. state is the requested state code.
func normalizeCongressMember(m congressMember, detail *congressDetail, role models.Role, state, district string) *models.Representative {
	website := m.URL
	var phone string

	if detail != nil {
		if detail.AddressInformation != nil {
			phone = detail.AddressInformation.PhoneNumber
		}
		if phone == "" {
			if last, ok := detail.Terms.latest(); ok {
				phone = last.Phone
				if last.URL != "" {
					website = last.URL
				}
			}
		}
	}

	var photo string
	if m.Depiction != nil {
		photo = m.Depiction.ImageURL
	}

	return &models.Representative{
		BioguideID: models.StringPtr(m.BioguideID),
		Name:       m.Name,
		Role:       role,
		Level:      models.LevelFederal,
		Party:      models.StringPtr(m.PartyName),
		State:      state,
		District:   district,
		PhotoURL:   models.StringPtr(photo),
		Phone:      models.StringPtr(phone),
		Website:    models.StringPtr(website),
	}
}

// normalizeStatePerson maps an OpenStates person to a representative.
// State officials carry no external identifier.
func normalizeStatePerson(p osPerson, role models.Role, state, district string) *models.Representative {
	office := preferredOffice(p.Offices)

	email := p.Email
	if email == "" && office != nil {
		email = office.Email
	}

	var phone string
	if office != nil {
		phone = office.Voice
	}

	var website string
	if len(p.Links) > 0 {
		website = p.Links[0].URL
	}

	return &models.Representative{
		Name:     p.Name,
		Role:     role,
		Level:    models.LevelState,
		Party:    models.StringPtr(p.Party),
		State:    state,
		District: district,
		PhotoURL: models.StringPtr(p.Image),
		Phone:    models.StringPtr(phone),
		Email:    models.StringPtr(email),
		Website:  models.StringPtr(website),
	}
}

// preferredOffice picks the capitol office, then the district office, then the first listed
func preferredOffice(offices []osOffice) *osOffice {
	if len(offices) == 0 {
		return nil
	}
	for _, classification := range []string{"capitol", "district"} {
		for i := range offices {
			if offices[i].Classification == classification {
				return &offices[i]
			}
		}
	}
	return &offices[0]
}

// cleanDistrict reduces a district to its leading integer ("004" becomes "4").
// Values without a leading integer, such as named districts, are returned trimmed.
func cleanDistrict(district string) string {
	trimmed := strings.TrimSpace(district)

	end := 0
	for end < len(trimmed) && unicode.IsDigit(rune(trimmed[end])) {
		end++
	}
	if end == 0 {
		return trimmed
	}

	n, err := strconv.Atoi(trimmed[:end])
	if err != nil {
		return trimmed
	}
	return strconv.Itoa(n)
}

package view

import (
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"example.com/activityboard/internal/domain"
)

// Classes and fixed copy used by the rendered list.
const (
	CardClass         = "activity-card"
	ParticipantClass  = "participant-item"
	EmailClass        = "participant-email"
	UnregisterClass   = "participant-delete"
	NoParticipants    = "No participants yet — be the first to sign up!"
	LoadFailureNotice = "Failed to load activities. Please try again later."
	PlaceholderLabel  = "-- Select an activity --"
)

var unregisterNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("activityboard/participant-delete"))

// UnregisterID is the element id of the unregister action for email in
// activity. It is stable across refreshes. A participant listed twice gets the
// same id on both buttons; either one removes a single entry for that email,
// so clicking by id dispatches the first.
func UnregisterID(activity, email string) string {
	return "unregister-" + uuid.NewSHA1(unregisterNamespace, []byte(activity+"\x00"+email)).String()
}

// ActivityCard builds the list entry for one activity.
func ActivityCard(a domain.Activity) *html.Node {
	d := a.Details
	return Element("div", Attrs("class", CardClass),
		Element("h4", nil, Text(a.Name)),
		Element("p", nil, Text(d.Description)),
		Element("p", nil, Element("strong", nil, Text("Schedule:")), Text(" "+d.Schedule)),
		Element("p", nil, Element("strong", nil, Text("Availability:")), Text(" "+strconv.Itoa(d.SpotsLeft())+" spots left")),
		participantsSection(a.Name, d.Participants),
	)
}

func participantsSection(activity string, participants []string) *html.Node {
	if len(participants) == 0 {
		return Element("p", Attrs("class", "no-participants"), Text(NoParticipants))
	}

	list := Element("ul", Attrs("class", "participants-list"))
	for _, email := range participants {
		list.AppendChild(Element("li", Attrs("class", ParticipantClass),
			Element("span", Attrs("class", EmailClass), Text(email)),
			Element("button", Attrs(
				"type", "button",
				"id", UnregisterID(activity, email),
				"class", UnregisterClass,
				"data-activity", activity,
				"data-email", email,
				"title", "Unregister",
			), Text("✖")),
		))
	}

	return Element("div", Attrs("class", "participants"),
		Element("h5", Attrs("class", "participants-header"),
			Text("Participants "),
			Element("span", Attrs("class", "participants-count"), Text("("+strconv.Itoa(len(participants))+")")),
		),
		list,
	)
}

// ActivityOptions builds the selector options: the placeholder followed by
// one option per name.
func ActivityOptions(names []string) []*html.Node {
	options := make([]*html.Node, 0, len(names)+1)
	options = append(options, Element("option", Attrs("value", ""), Text(PlaceholderLabel)))
	for _, name := range names {
		options = append(options, Element("option", Attrs("value", name), Text(name)))
	}
	return options
}

// FailureNotice is shown in place of the list when a refresh fails.
func FailureNotice() *html.Node {
	return Element("p", nil, Text(LoadFailureNotice))
}

package dispatch

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	embed := &discordgo.MessageEmbed{
		Title:       "Message Deleted",
		Description: "in #general",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Author", Value: "spammer#0001"},
			{Name: "Content", Value: "buy my coins"},
		},
	}

	got := Summarize(embed)
	assert.Equal(t, "Message Deleted: in #general | Author: spammer#0001 | Content: buy my coins", got)
}

func TestSummarizeMinimal(t *testing.T) {
	assert.Equal(t, "", Summarize(nil))
	assert.Equal(t, "Member Joined", Summarize(&discordgo.MessageEmbed{Title: "Member Joined"}))
}

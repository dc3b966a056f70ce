package ai

const parseResumePrompt = `
You are an intelligent resume parser.

Extract information from the resume and return ONLY valid JSON.
No explanations. No markdown. No extra text.

Rules:
- Use fixed schema fields when data exists.
- Any extra info (address, certifications, languages, awards, projects) goes into "extra_fields".
- Do NOT guess values; if not found, return null or empty array.

Schema:
{
  "name": null | string,
  "email": null | string,
  "phone": null | string,
  "linkedin": null | string,
  "github": null | string,
  "date_of_birth": null | string,
  "job_role": null | string,
  "technical_skills": string[],
  "soft_skills": string[],
  "education": string[],
  "experience": string[],
  "extra_fields": object
}

Resume Text:
%s
`

const recommendRolesPrompt = `
Resume Data: %s
Requested Role: %s

Suggest 3-5 suitable job roles for this candidate.
Indicate for each role if it matches the requested role with yes/no.
Return JSON array like:
[{"role": "Web Developer", "match_requested_role": "yes"}, ...]
Only return JSON, no explanations.
`

const resumeScorePrompt = `
You are a professional hiring assistant.

Candidate Resume Data: %s
Job Description: %s
Role Level: %s

Evaluate the resume and assign scores for the following 10 categories:
1. Education
2. Experience
3. Technical Skills
4. Soft Skills
5. Projects
6. Certifications / Training
7. Achievements / Awards
8. Extra Skills
9. Professional Online Presence
10. Overall Presentation

Rules:
- Each category score should be 0-20.
- Score relevant categories higher; ignore irrelevant ones for this job type.
- Return JSON only, with category names as keys and scores as values.
- Include "Total Score" and "Percentage".
- No extra text.

Output Example:
{
  "Education": 15,
  "Experience": 10,
  "Technical Skills": 18,
  "Soft Skills": 12,
  "Projects": 20,
  "Certifications": 10,
  "Achievements": 5,
  "Extra Skills": 8,
  "Online Presence": 10,
  "Presentation": 10,
  "Total Score": 118,
  "Percentage": 59.0
}
`

const atsScorePrompt = `
Resume Data: %s
Requested Role: %s
Job Description: %s

Evaluate how well this resume matches the requested role and job description.
Return ONLY an integer 0-100, no explanations.
`
